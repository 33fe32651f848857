// Package database provides the data access layer for the catalog.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup (SQLite or Postgres) and migrations
//	├── countries/       # Country CRUD
//	├── addresses/       # Address CRUD, cascade to the owning author
//	├── authors/         # Author CRUD, cascade to their books
//	├── books/           # Book CRUD, listing, aggregates, slug lookups
//	└── audit/           # Admin log entries
//
// Each sub-package provides a Repository built on the shared *gorm.DB:
//
//	db, err := database.NewDatabase(cfg.Database)
//	booksRepo := books.NewRepository(db.DB)
//	book, err := booksRepo.GetBySlug("harry-potter")
//
// Lookups that match nothing return entities.ErrNotFound.
//
// # Cascades
//
// Deletes cascade in application code inside a transaction rather than via
// ON DELETE clauses, so SQLite (foreign keys off by default) and Postgres
// behave identically:
//
//   - deleting an address deletes the author that owns it
//   - deleting an author deletes their books
//   - deleting a country or a book only removes publication links
package database
