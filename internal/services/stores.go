package services

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookoutlet/internal/database/addresses"
	"github.com/mrlokans/bookoutlet/internal/database/authors"
	"github.com/mrlokans/bookoutlet/internal/database/books"
	"github.com/mrlokans/bookoutlet/internal/database/countries"
)

// NewStores builds the gorm-backed repositories for every catalog record.
func NewStores(db *gorm.DB) Stores {
	return Stores{
		Countries: countries.NewRepository(db),
		Addresses: addresses.NewRepository(db),
		Authors:   authors.NewRepository(db),
		Books:     books.NewRepository(db),
	}
}
