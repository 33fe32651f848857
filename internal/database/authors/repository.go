// Package authors provides database operations for authors.
package authors

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Repository handles author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all authors ordered by last then first name.
func (r *Repository) List() ([]entities.Author, error) {
	var authors []entities.Author
	err := r.db.Preload("Address").Order("last_name ASC, first_name ASC, id ASC").Find(&authors).Error
	return authors, err
}

// GetByID retrieves an author with their address and books.
func (r *Repository) GetByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Address").Preload("Books", func(db *gorm.DB) *gorm.DB {
		return db.Order("title ASC")
	}).First(&author, id).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &author, nil
}

// Create inserts a new author. The address must already exist.
func (r *Repository) Create(author *entities.Author) error {
	return r.db.Omit("Address", "Books").Create(author).Error
}

// Update saves all fields of an existing author, including clearing the address.
func (r *Repository) Update(author *entities.Author) error {
	result := r.db.Model(&entities.Author{}).Where("id = ?", author.ID).Updates(map[string]any{
		"first_name": author.FirstName,
		"last_name":  author.LastName,
		"address_id": author.AddressID,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// AddressTaken reports whether another author already lives at addressID.
func (r *Repository) AddressTaken(addressID, exceptAuthorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).
		Where("address_id = ? AND id <> ?", addressID, exceptAuthorID).
		Count(&count).Error
	return count > 0, err
}

// Delete removes an author and all of their books.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Author{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return entities.ErrNotFound
		}
		return database.DeleteAuthors(tx, id)
	})
}

// Count returns the number of authors.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Author{}).Count(&count).Error
	return count, err
}
