// Package audit records and reads the admin change log.
package audit

import (
	"log"
	"time"

	"github.com/mrlokans/bookoutlet/internal/database/audit"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// RecentLimit is the number of actions shown on the admin index.
const RecentLimit = 10

const maxReprLength = 200

// Service provides high-level admin log functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic admin log entry.
func (s *Service) Log(entry *entities.AdminLogEntry) error {
	return s.repo.LogEntry(entry)
}

func (s *Service) record(user *entities.User, action entities.AdminAction, objectType string, objectID uint, repr, message string) {
	entry := &entities.AdminLogEntry{
		Action:        action,
		ObjectType:    objectType,
		ObjectID:      objectID,
		ObjectRepr:    truncate(repr, maxReprLength),
		ChangeMessage: message,
	}
	if user != nil {
		entry.UserID = user.ID
		entry.Username = user.Username
	}
	if err := s.repo.LogEntry(entry); err != nil {
		log.Printf("Failed to record admin %s of %s %d: %v", action, objectType, objectID, err)
	}
}

// LogAddition records that an object was created.
func (s *Service) LogAddition(user *entities.User, objectType string, objectID uint, repr string) {
	s.record(user, entities.AdminActionAddition, objectType, objectID, repr, "Added.")
}

// LogChange records that an object was edited.
func (s *Service) LogChange(user *entities.User, objectType string, objectID uint, repr, message string) {
	s.record(user, entities.AdminActionChange, objectType, objectID, repr, message)
}

// LogDeletion records that an object was deleted.
func (s *Service) LogDeletion(user *entities.User, objectType string, objectID uint, repr string) {
	s.record(user, entities.AdminActionDeletion, objectType, objectID, repr, "Deleted.")
}

// Recent returns the latest admin actions across all objects.
func (s *Service) Recent(limit int) ([]entities.AdminLogEntry, error) {
	return s.repo.Recent(limit)
}

// History returns every recorded action on one object, oldest first.
func (s *Service) History(objectType string, objectID uint) ([]entities.AdminLogEntry, error) {
	return s.repo.ForObject(objectType, objectID)
}

// Prune removes entries older than retentionDays. Zero or negative keeps everything.
func (s *Service) Prune(retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.repo.DeleteOlderThan(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
