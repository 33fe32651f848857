// Package books provides database operations for the book catalog.
//
// It implements services.BookStore:
//
//	var _ services.BookStore = (*Repository)(nil)
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBySlug("harry-potter")
package books

import (
	"log"

	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/utils"
)

// Filter narrows the admin book list. Zero values mean "any".
type Filter struct {
	AuthorID uint
	Rating   int
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) withRelations() *gorm.DB {
	return r.db.Preload("Author").Preload("PublishedCountries", func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
}

// ListByTitleDesc returns every book ordered by title, Z to A.
func (r *Repository) ListByTitleDesc() ([]entities.Book, error) {
	var books []entities.Book
	err := r.withRelations().Order("title DESC, id ASC").Find(&books).Error
	return books, err
}

// List returns books matching the filter, newest first.
func (r *Repository) List(filter Filter) ([]entities.Book, error) {
	query := r.withRelations()
	if filter.AuthorID > 0 {
		query = query.Where("author_id = ?", filter.AuthorID)
	}
	if filter.Rating > 0 {
		query = query.Where("rating = ?", filter.Rating)
	}

	var books []entities.Book
	err := query.Order("id DESC").Find(&books).Error
	return books, err
}

// GetByID retrieves a book with its author and countries.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.withRelations().First(&book, id).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &book, nil
}

// GetBySlug retrieves a book by slug. Slugs are not unique; the book with
// the lowest ID wins.
func (r *Repository) GetBySlug(slug string) (*entities.Book, error) {
	if slug == "" {
		return nil, entities.ErrNotFound
	}
	var book entities.Book
	err := r.withRelations().Where("slug = ?", slug).Order("id ASC").First(&book).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &book, nil
}

// Create inserts a book and links its published countries.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "PublishedCountries").Create(book).Error; err != nil {
			return err
		}
		return setCountries(tx, book.ID, book.PublishedCountries)
	})
}

// Update saves all fields of a book and replaces its published countries.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entities.Book{}).Where("id = ?", book.ID).Updates(map[string]any{
			"title":          book.Title,
			"rating":         book.Rating,
			"author_id":      book.AuthorID,
			"is_bestselling": book.IsBestselling,
			"slug":           book.Slug,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrNotFound
		}
		if err := tx.Exec("DELETE FROM "+database.PublicationsTable+" WHERE book_id = ?", book.ID).Error; err != nil {
			return err
		}
		return setCountries(tx, book.ID, book.PublishedCountries)
	})
}

func setCountries(tx *gorm.DB, bookID uint, countries []entities.Country) error {
	seen := make(map[uint]bool, len(countries))
	for _, c := range countries {
		if c.ID == 0 || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		err := tx.Exec("INSERT INTO "+database.PublicationsTable+" (book_id, country_id) VALUES (?, ?)", bookID, c.ID).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a book and its publication links.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return entities.ErrNotFound
		}
		return database.DeleteBooks(tx, id)
	})
}

// Count returns the number of books.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// Stats computes the aggregates shown on the listing page and the API.
func (r *Repository) Stats() (*entities.CatalogStats, error) {
	var row struct {
		Total       int64
		Average     *float64
		Bestsellers int64
	}
	err := r.db.Model(&entities.Book{}).
		Select("COUNT(*) AS total, AVG(rating) AS average, " +
			"COALESCE(SUM(CASE WHEN is_bestselling THEN 1 ELSE 0 END), 0) AS bestsellers").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	var buckets []struct {
		Rating int
		Count  int
	}
	err = r.db.Model(&entities.Book{}).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, err
	}

	stats := &entities.CatalogStats{
		TotalBooks:  row.Total,
		Bestsellers: row.Bestsellers,
		Ratings:     make(map[int]int, entities.MaxRating),
	}
	if row.Total > 0 {
		stats.AverageRating = row.Average
	}
	for rating := entities.MinRating; rating <= entities.MaxRating; rating++ {
		stats.Ratings[rating] = 0
	}
	for _, b := range buckets {
		stats.Ratings[b.Rating] = b.Count
	}
	return stats, nil
}

// RegenerateMissingSlugs fills every blank slug from the book's title and
// returns how many books were updated.
func (r *Repository) RegenerateMissingSlugs() (int, error) {
	var books []entities.Book
	if err := r.db.Where("slug = ''").Find(&books).Error; err != nil {
		return 0, err
	}

	updated := 0
	for _, book := range books {
		slug := utils.SlugifyMax(book.Title, entities.SlugMaxLength)
		if slug == "" {
			log.Printf("Book %d (%q) has no sluggable title, skipping", book.ID, book.Title)
			continue
		}
		if err := r.db.Model(&entities.Book{}).Where("id = ?", book.ID).Update("slug", slug).Error; err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
