// Package addresses provides database operations for author addresses.
package addresses

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Repository handles address database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new addresses repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all addresses ordered by city and street.
func (r *Repository) List() ([]entities.Address, error) {
	var addresses []entities.Address
	err := r.db.Order("city ASC, street ASC, id ASC").Find(&addresses).Error
	return addresses, err
}

// ListAvailable returns addresses not owned by any author, plus the one
// owned by exceptAuthorID (pass 0 for a new author).
func (r *Repository) ListAvailable(exceptAuthorID uint) ([]entities.Address, error) {
	claimed := r.db.Model(&entities.Author{}).Select("address_id").
		Where("address_id IS NOT NULL AND id <> ?", exceptAuthorID)

	var addresses []entities.Address
	err := r.db.Where("id NOT IN (?)", claimed).Order("city ASC, street ASC, id ASC").Find(&addresses).Error
	return addresses, err
}

// GetByID retrieves an address by ID.
func (r *Repository) GetByID(id uint) (*entities.Address, error) {
	var address entities.Address
	if err := r.db.First(&address, id).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &address, nil
}

// Owner returns the author living at the address, if any, with their books.
func (r *Repository) Owner(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Books").Where("address_id = ?", id).First(&author).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &author, nil
}

// Create inserts a new address.
func (r *Repository) Create(address *entities.Address) error {
	return r.db.Create(address).Error
}

// Update saves all fields of an existing address.
func (r *Repository) Update(address *entities.Address) error {
	result := r.db.Model(&entities.Address{}).Where("id = ?", address.ID).Updates(map[string]any{
		"street":      address.Street,
		"postal_code": address.PostalCode,
		"city":        address.City,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes an address together with the author who owns it and that
// author's books.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var authorIDs []uint
		if err := tx.Model(&entities.Author{}).Where("address_id = ?", id).Pluck("id", &authorIDs).Error; err != nil {
			return err
		}
		if err := database.DeleteAuthors(tx, authorIDs...); err != nil {
			return err
		}
		result := tx.Delete(&entities.Address{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrNotFound
		}
		return nil
	})
}

// Count returns the number of addresses.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Address{}).Count(&count).Error
	return count, err
}
