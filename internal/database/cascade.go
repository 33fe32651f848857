package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/entities"
)

// PublicationsTable is the join table between books and countries.
const PublicationsTable = "book_published_countries"

// NotFound maps gorm's not-found error onto entities.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.ErrNotFound
	}
	return err
}

// DeleteBooks removes books and their publication links.
// Must be called inside a transaction.
func DeleteBooks(tx *gorm.DB, bookIDs ...uint) error {
	if len(bookIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+PublicationsTable+" WHERE book_id IN ?", bookIDs).Error; err != nil {
		return err
	}
	return tx.Delete(&entities.Book{}, bookIDs).Error
}

// DeleteAuthors removes authors together with all of their books.
// Must be called inside a transaction.
func DeleteAuthors(tx *gorm.DB, authorIDs ...uint) error {
	if len(authorIDs) == 0 {
		return nil
	}
	var bookIDs []uint
	if err := tx.Model(&entities.Book{}).Where("author_id IN ?", authorIDs).Pluck("id", &bookIDs).Error; err != nil {
		return err
	}
	if err := DeleteBooks(tx, bookIDs...); err != nil {
		return err
	}
	return tx.Delete(&entities.Author{}, authorIDs).Error
}
