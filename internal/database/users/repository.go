// Package users provides database operations for admin accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByLogin("admin")
package users

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// GetByLogin retrieves a user by username or email.
func (r *Repository) GetByLogin(login string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// Exists reports whether a user with the username or email is already registered.
func (r *Repository) Exists(username, email string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// GetByTokenHash retrieves a user by their hashed API token.
func (r *Repository) GetByTokenHash(hash string) (*entities.User, error) {
	if hash == "" {
		return nil, entities.ErrNotFound
	}
	var user entities.User
	if err := r.db.Where("token_hash = ?", hash).First(&user).Error; err != nil {
		return nil, database.NotFound(err)
	}
	return &user, nil
}

// Update applies a partial update to a user.
func (r *Repository) Update(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}

// Count returns the number of users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
