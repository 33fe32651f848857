// Package countries provides database operations for countries.
package countries

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Repository handles country database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new countries repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all countries ordered by name.
func (r *Repository) List() ([]entities.Country, error) {
	var countries []entities.Country
	err := r.db.Order("name ASC, id ASC").Find(&countries).Error
	return countries, err
}

// GetByID retrieves a country by ID.
func (r *Repository) GetByID(id uint) (*entities.Country, error) {
	var country entities.Country
	if err := r.db.First(&country, id).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &country, nil
}

// GetByIDs retrieves the countries with the given IDs; unknown IDs are ignored.
func (r *Repository) GetByIDs(ids []uint) ([]entities.Country, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var countries []entities.Country
	err := r.db.Where("id IN ?", ids).Order("name ASC").Find(&countries).Error
	return countries, err
}

// Create inserts a new country.
func (r *Repository) Create(country *entities.Country) error {
	return r.db.Create(country).Error
}

// Update saves all fields of an existing country.
func (r *Repository) Update(country *entities.Country) error {
	result := r.db.Model(&entities.Country{}).Where("id = ?", country.ID).Updates(map[string]any{
		"name": country.Name,
		"code": country.Code,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Delete removes a country. Books stay; only their publication links go.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM "+database.PublicationsTable+" WHERE country_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Country{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return entities.ErrNotFound
		}
		return nil
	})
}

// Count returns the number of countries.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Country{}).Count(&count).Error
	return count, err
}
