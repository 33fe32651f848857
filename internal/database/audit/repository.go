// Package audit stores the admin change log.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/entities"
)

// DefaultLimit caps list queries when the caller passes no limit.
const DefaultLimit = 50

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEntry saves an admin log entry to the database.
func (r *Repository) LogEntry(entry *entities.AdminLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// Recent returns the latest entries across all objects, most recent first.
func (r *Repository) Recent(limit int) ([]entities.AdminLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var entries []entities.AdminLogEntry
	err := r.db.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// ForObject returns the history of one object, oldest first.
func (r *Repository) ForObject(objectType string, objectID uint) ([]entities.AdminLogEntry, error) {
	var entries []entities.AdminLogEntry
	err := r.db.Where("object_type = ? AND object_id = ?", objectType, objectID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

// DeleteOlderThan removes entries created before the given time.
// Returns the number of deleted entries.
func (r *Repository) DeleteOlderThan(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AdminLogEntry{})
	return result.RowsAffected, result.Error
}
