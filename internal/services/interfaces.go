package services

import (
	"github.com/mrlokans/bookoutlet/internal/database/books"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// CountryStore persists countries.
type CountryStore interface {
	List() ([]entities.Country, error)
	GetByID(id uint) (*entities.Country, error)
	GetByIDs(ids []uint) ([]entities.Country, error)
	Create(country *entities.Country) error
	Update(country *entities.Country) error
	Delete(id uint) error
	Count() (int64, error)
}

// AddressStore persists addresses.
type AddressStore interface {
	List() ([]entities.Address, error)
	ListAvailable(exceptAuthorID uint) ([]entities.Address, error)
	GetByID(id uint) (*entities.Address, error)
	Owner(id uint) (*entities.Author, error)
	Create(address *entities.Address) error
	Update(address *entities.Address) error
	Delete(id uint) error
	Count() (int64, error)
}

// AuthorStore persists authors.
type AuthorStore interface {
	List() ([]entities.Author, error)
	GetByID(id uint) (*entities.Author, error)
	Create(author *entities.Author) error
	Update(author *entities.Author) error
	AddressTaken(addressID, exceptAuthorID uint) (bool, error)
	Delete(id uint) error
	Count() (int64, error)
}

// BookStore persists books and computes catalog aggregates.
type BookStore interface {
	ListByTitleDesc() ([]entities.Book, error)
	List(filter books.Filter) ([]entities.Book, error)
	GetByID(id uint) (*entities.Book, error)
	GetBySlug(slug string) (*entities.Book, error)
	Create(book *entities.Book) error
	Update(book *entities.Book) error
	Delete(id uint) error
	Count() (int64, error)
	Stats() (*entities.CatalogStats, error)
	RegenerateMissingSlugs() (int, error)
}

// AdminLogger records admin changes. A nil user means authentication is off.
type AdminLogger interface {
	LogAddition(user *entities.User, objectType string, objectID uint, repr string)
	LogChange(user *entities.User, objectType string, objectID uint, repr, message string)
	LogDeletion(user *entities.User, objectType string, objectID uint, repr string)
}

// Stores groups the catalog repositories.
type Stores struct {
	Countries CountryStore
	Addresses AddressStore
	Authors   AuthorStore
	Books     BookStore
}

// ModelCounts is shown on the admin index.
type ModelCounts struct {
	Countries int64
	Addresses int64
	Authors   int64
	Books     int64
}
