package books

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func createAuthor(t *testing.T, db *gorm.DB, first, last string) *entities.Author {
	author := &entities.Author{FirstName: first, LastName: last}
	require.NoError(t, db.Omit("Address", "Books").Create(author).Error)
	return author
}

func TestRepository_CreateWithCountries(t *testing.T) {
	repo, db := setupTestDB(t)

	uk := entities.Country{Name: "United Kingdom", Code: "UK"}
	de := entities.Country{Name: "Germany", Code: "DE"}
	require.NoError(t, db.Create(&uk).Error)
	require.NoError(t, db.Create(&de).Error)
	author := createAuthor(t, db, "J.K.", "Rowling")

	book := &entities.Book{
		Title:              "Harry Potter",
		Rating:             5,
		AuthorID:           &author.ID,
		IsBestselling:      true,
		Slug:               "harry-potter",
		PublishedCountries: []entities.Country{uk, de, uk},
	}
	require.NoError(t, repo.Create(book))
	assert.NotZero(t, book.ID)

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Author)
	assert.Equal(t, "J.K. Rowling", found.Author.FullName())
	require.Len(t, found.PublishedCountries, 2)
	assert.Equal(t, "Germany", found.PublishedCountries[0].Name)
	assert.True(t, found.IsBestselling)
}

func TestRepository_Update(t *testing.T) {
	repo, db := setupTestDB(t)

	uk := entities.Country{Name: "United Kingdom", Code: "UK"}
	require.NoError(t, db.Create(&uk).Error)
	author := createAuthor(t, db, "J.K.", "Rowling")

	book := &entities.Book{Title: "Harry Potter", Rating: 5, AuthorID: &author.ID, IsBestselling: true,
		PublishedCountries: []entities.Country{uk}}
	require.NoError(t, repo.Create(book))

	book.Title = "Harry Potter 2"
	book.Rating = 3
	book.AuthorID = nil
	book.IsBestselling = false
	book.Slug = "hp-2"
	book.PublishedCountries = nil
	require.NoError(t, repo.Update(book))

	found, err := repo.GetByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harry Potter 2", found.Title)
	assert.Equal(t, 3, found.Rating)
	assert.Nil(t, found.AuthorID)
	assert.False(t, found.IsBestselling)
	assert.Equal(t, "hp-2", found.Slug)
	assert.Empty(t, found.PublishedCountries)

	assert.ErrorIs(t, repo.Update(&entities.Book{ID: 999, Title: "x", Rating: 1}), entities.ErrNotFound)
}

func TestRepository_ListByTitleDesc(t *testing.T) {
	repo, _ := setupTestDB(t)

	for _, title := range []string{"Beta", "Alpha", "Gamma"} {
		require.NoError(t, repo.Create(&entities.Book{Title: title, Rating: 3}))
	}

	books, err := repo.ListByTitleDesc()
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "Gamma", books[0].Title)
	assert.Equal(t, "Beta", books[1].Title)
	assert.Equal(t, "Alpha", books[2].Title)
}

func TestRepository_ListFilter(t *testing.T) {
	repo, db := setupTestDB(t)

	rowling := createAuthor(t, db, "J.K.", "Rowling")
	tolkien := createAuthor(t, db, "J.R.R.", "Tolkien")
	require.NoError(t, repo.Create(&entities.Book{Title: "HP1", Rating: 5, AuthorID: &rowling.ID}))
	require.NoError(t, repo.Create(&entities.Book{Title: "HP2", Rating: 4, AuthorID: &rowling.ID}))
	require.NoError(t, repo.Create(&entities.Book{Title: "LOTR", Rating: 5, AuthorID: &tolkien.ID}))

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"no filter", Filter{}, 3},
		{"by author", Filter{AuthorID: rowling.ID}, 2},
		{"by rating", Filter{Rating: 5}, 2},
		{"by author and rating", Filter{AuthorID: rowling.ID, Rating: 5}, 1},
		{"no match", Filter{AuthorID: tolkien.ID, Rating: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := repo.List(tt.filter)
			require.NoError(t, err)
			assert.Len(t, books, tt.want)
		})
	}
}

func TestRepository_GetBySlug(t *testing.T) {
	repo, _ := setupTestDB(t)

	first := &entities.Book{Title: "Dup One", Rating: 2, Slug: "dup"}
	second := &entities.Book{Title: "Dup Two", Rating: 4, Slug: "dup"}
	require.NoError(t, repo.Create(first))
	require.NoError(t, repo.Create(second))
	require.NoError(t, repo.Create(&entities.Book{Title: "No slug", Rating: 1}))

	t.Run("lowest id wins", func(t *testing.T) {
		book, err := repo.GetBySlug("dup")
		require.NoError(t, err)
		assert.Equal(t, first.ID, book.ID)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := repo.GetBySlug("missing")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})

	t.Run("empty slug never matches", func(t *testing.T) {
		_, err := repo.GetBySlug("")
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestRepository_Stats(t *testing.T) {
	repo, _ := setupTestDB(t)

	t.Run("empty catalog", func(t *testing.T) {
		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Zero(t, stats.TotalBooks)
		assert.Nil(t, stats.AverageRating)
		assert.Len(t, stats.Ratings, 5)
	})

	require.NoError(t, repo.Create(&entities.Book{Title: "A", Rating: 5, IsBestselling: true}))
	require.NoError(t, repo.Create(&entities.Book{Title: "B", Rating: 4}))
	require.NoError(t, repo.Create(&entities.Book{Title: "C", Rating: 4}))

	t.Run("aggregates", func(t *testing.T) {
		stats, err := repo.Stats()
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.TotalBooks)
		require.NotNil(t, stats.AverageRating)
		assert.InDelta(t, 4.333, *stats.AverageRating, 0.001)
		assert.Equal(t, int64(1), stats.Bestsellers)
		assert.Equal(t, 2, stats.Ratings[4])
		assert.Equal(t, 1, stats.Ratings[5])
		assert.Equal(t, 0, stats.Ratings[1])
	})
}

func TestRepository_Delete(t *testing.T) {
	repo, db := setupTestDB(t)

	country := entities.Country{Name: "France", Code: "FR"}
	require.NoError(t, db.Create(&country).Error)
	book := &entities.Book{Title: "Candide", Rating: 4, PublishedCountries: []entities.Country{country}}
	require.NoError(t, repo.Create(book))

	require.NoError(t, repo.Delete(book.ID))

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)

	var links int64
	require.NoError(t, db.Table(database.PublicationsTable).Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.Delete(book.ID), entities.ErrNotFound)
}

func TestRepository_RegenerateMissingSlugs(t *testing.T) {
	repo, _ := setupTestDB(t)

	require.NoError(t, repo.Create(&entities.Book{Title: "Harry Potter and the Philosopher's Stone", Rating: 5}))
	require.NoError(t, repo.Create(&entities.Book{Title: "Kept", Rating: 3, Slug: "custom"}))
	require.NoError(t, repo.Create(&entities.Book{Title: "!!!", Rating: 2}))

	updated, err := repo.RegenerateMissingSlugs()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	book, err := repo.GetBySlug("harry-potter-and-the-philosophers-stone")
	require.NoError(t, err)
	assert.Equal(t, 5, book.Rating)

	kept, err := repo.GetBySlug("custom")
	require.NoError(t, err)
	assert.Equal(t, "Kept", kept.Title)
}
