package authors

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
	db, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "authors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB), db.DB
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, db := setupTestDB(t)

	address := &entities.Address{Street: "Main St 1", PostalCode: "10115", City: "Berlin"}
	require.NoError(t, db.Create(address).Error)

	author := &entities.Author{FirstName: "Max", LastName: "Frisch", AddressID: &address.ID}
	require.NoError(t, repo.Create(author))

	for _, title := range []string{"Stiller", "Homo Faber"} {
		require.NoError(t, db.Omit("Author", "PublishedCountries").
			Create(&entities.Book{Title: title, Rating: 4, AuthorID: &author.ID}).Error)
	}

	found, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Equal(t, "Max Frisch", found.FullName())
	require.NotNil(t, found.Address)
	assert.Equal(t, "Berlin", found.Address.City)
	require.Len(t, found.Books, 2)
	assert.Equal(t, "Homo Faber", found.Books[0].Title)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Address)
}

func TestRepository_UpdateClearsAddress(t *testing.T) {
	repo, db := setupTestDB(t)

	address := &entities.Address{Street: "Main St 1", PostalCode: "10115", City: "Berlin"}
	require.NoError(t, db.Create(address).Error)
	author := &entities.Author{FirstName: "Max", LastName: "Frisch", AddressID: &address.ID}
	require.NoError(t, repo.Create(author))

	author.AddressID = nil
	author.LastName = "F."
	require.NoError(t, repo.Update(author))

	found, err := repo.GetByID(author.ID)
	require.NoError(t, err)
	assert.Nil(t, found.AddressID)
	assert.Equal(t, "F.", found.LastName)

	assert.ErrorIs(t, repo.Update(&entities.Author{ID: 999}), entities.ErrNotFound)
}

func TestRepository_AddressTaken(t *testing.T) {
	repo, db := setupTestDB(t)

	address := &entities.Address{Street: "Main St 1", PostalCode: "10115", City: "Berlin"}
	require.NoError(t, db.Create(address).Error)
	author := &entities.Author{FirstName: "Max", LastName: "Frisch", AddressID: &address.ID}
	require.NoError(t, repo.Create(author))

	taken, err := repo.AddressTaken(address.ID, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.AddressTaken(address.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestRepository_DeleteCascades(t *testing.T) {
	repo, db := setupTestDB(t)

	country := &entities.Country{Name: "Switzerland", Code: "CH"}
	require.NoError(t, db.Create(country).Error)
	author := &entities.Author{FirstName: "Max", LastName: "Frisch"}
	require.NoError(t, repo.Create(author))
	book := &entities.Book{Title: "Stiller", Rating: 4, AuthorID: &author.ID}
	require.NoError(t, db.Omit("Author", "PublishedCountries").Create(book).Error)
	require.NoError(t, db.Exec("INSERT INTO "+database.PublicationsTable+" (book_id, country_id) VALUES (?, ?)", book.ID, country.ID).Error)

	require.NoError(t, repo.Delete(author.ID))

	var books, links, countries int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&books).Error)
	require.NoError(t, db.Table(database.PublicationsTable).Count(&links).Error)
	require.NoError(t, db.Model(&entities.Country{}).Count(&countries).Error)
	assert.Zero(t, books)
	assert.Zero(t, links)
	assert.Equal(t, int64(1), countries)

	assert.ErrorIs(t, repo.Delete(author.ID), entities.ErrNotFound)
}
