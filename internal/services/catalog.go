// Package services holds the catalog business rules shared by the public
// pages, the admin site, the JSON API and background tasks.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/bookoutlet/internal/database/books"
	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/utils"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

const (
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgAddressTaken  = "Author with this Address already exists."
)

type CountryInput struct {
	Name string
	Code string
}

type AddressInput struct {
	Street     string
	PostalCode string
	City       string
}

type AuthorInput struct {
	FirstName string
	LastName  string
	AddressID *uint

	// InputErrors holds fields the caller could not convert. They are
	// reported together with the validation errors and block the save.
	InputErrors validators.FieldErrors
}

type BookInput struct {
	Title         string
	Rating        int
	AuthorID      *uint
	IsBestselling bool
	Slug          string
	CountryIDs    []uint

	InputErrors validators.FieldErrors
}

// CatalogService validates and persists catalog records and records every
// admin change.
type CatalogService struct {
	countries CountryStore
	addresses AddressStore
	authors   AuthorStore
	books     BookStore
	adminLog  AdminLogger
}

func NewCatalogService(stores Stores, adminLog AdminLogger) *CatalogService {
	return &CatalogService{
		countries: stores.Countries,
		addresses: stores.Addresses,
		authors:   stores.Authors,
		books:     stores.Books,
		adminLog:  adminLog,
	}
}

// Listing returns every book ordered by title descending, with the catalog stats.
func (s *CatalogService) Listing() ([]entities.Book, *entities.CatalogStats, error) {
	list, err := s.books.ListByTitleDesc()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list books: %w", err)
	}
	stats, err := s.books.Stats()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return list, stats, nil
}

func (s *CatalogService) Stats() (*entities.CatalogStats, error) {
	return s.books.Stats()
}

// BookBySlug returns entities.ErrNotFound when no book has the slug.
func (s *CatalogService) BookBySlug(slug string) (*entities.Book, error) {
	return s.books.GetBySlug(slug)
}

func (s *CatalogService) Counts() (ModelCounts, error) {
	var counts ModelCounts
	var err error
	if counts.Countries, err = s.countries.Count(); err != nil {
		return counts, err
	}
	if counts.Addresses, err = s.addresses.Count(); err != nil {
		return counts, err
	}
	if counts.Authors, err = s.authors.Count(); err != nil {
		return counts, err
	}
	counts.Books, err = s.books.Count()
	return counts, err
}

// Countries

func (s *CatalogService) Countries() ([]entities.Country, error) {
	return s.countries.List()
}

func (s *CatalogService) Country(id uint) (*entities.Country, error) {
	return s.countries.GetByID(id)
}

// SaveCountry creates a country when id is 0 and updates it otherwise.
func (s *CatalogService) SaveCountry(user *entities.User, id uint, in CountryInput) (*entities.Country, error) {
	country := &entities.Country{
		ID:   id,
		Name: strings.TrimSpace(in.Name),
		Code: strings.TrimSpace(in.Code),
	}
	if err := validators.Validate(country); err != nil {
		return country, err
	}

	if id == 0 {
		if err := s.countries.Create(country); err != nil {
			return country, fmt.Errorf("failed to create country: %w", err)
		}
		s.adminLog.LogAddition(user, entities.ObjectTypeCountry, country.ID, country.String())
		return country, nil
	}

	old, err := s.countries.GetByID(id)
	if err != nil {
		return country, err
	}
	if err := s.countries.Update(country); err != nil {
		return country, fmt.Errorf("failed to update country: %w", err)
	}
	changes := newChangeSet().
		add("name", old.Name != country.Name).
		add("code", old.Code != country.Code)
	s.adminLog.LogChange(user, entities.ObjectTypeCountry, country.ID, country.String(), changes.Message())
	return country, nil
}

func (s *CatalogService) DeleteCountry(user *entities.User, id uint) error {
	country, err := s.countries.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.countries.Delete(id); err != nil {
		return fmt.Errorf("failed to delete country: %w", err)
	}
	s.adminLog.LogDeletion(user, entities.ObjectTypeCountry, id, country.String())
	return nil
}

// Addresses

func (s *CatalogService) Addresses() ([]entities.Address, error) {
	return s.addresses.List()
}

// AvailableAddresses lists addresses an author may pick: unclaimed ones plus
// the author's current address.
func (s *CatalogService) AvailableAddresses(authorID uint) ([]entities.Address, error) {
	return s.addresses.ListAvailable(authorID)
}

func (s *CatalogService) Address(id uint) (*entities.Address, error) {
	return s.addresses.GetByID(id)
}

// AddressOwner returns the author living at the address, or nil.
func (s *CatalogService) AddressOwner(id uint) (*entities.Author, error) {
	owner, err := s.addresses.Owner(id)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	return owner, err
}

func (s *CatalogService) SaveAddress(user *entities.User, id uint, in AddressInput) (*entities.Address, error) {
	address := &entities.Address{
		ID:         id,
		Street:     strings.TrimSpace(in.Street),
		PostalCode: strings.TrimSpace(in.PostalCode),
		City:       strings.TrimSpace(in.City),
	}
	if err := validators.Validate(address); err != nil {
		return address, err
	}

	if id == 0 {
		if err := s.addresses.Create(address); err != nil {
			return address, fmt.Errorf("failed to create address: %w", err)
		}
		s.adminLog.LogAddition(user, entities.ObjectTypeAddress, address.ID, address.String())
		return address, nil
	}

	old, err := s.addresses.GetByID(id)
	if err != nil {
		return address, err
	}
	if err := s.addresses.Update(address); err != nil {
		return address, fmt.Errorf("failed to update address: %w", err)
	}
	changes := newChangeSet().
		add("street", old.Street != address.Street).
		add("postal_code", old.PostalCode != address.PostalCode).
		add("city", old.City != address.City)
	s.adminLog.LogChange(user, entities.ObjectTypeAddress, address.ID, address.String(), changes.Message())
	return address, nil
}

// DeleteAddress also deletes the author living there and their books.
func (s *CatalogService) DeleteAddress(user *entities.User, id uint) error {
	address, err := s.addresses.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.addresses.Delete(id); err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	s.adminLog.LogDeletion(user, entities.ObjectTypeAddress, id, address.String())
	return nil
}

// Authors

func (s *CatalogService) Authors() ([]entities.Author, error) {
	return s.authors.List()
}

func (s *CatalogService) Author(id uint) (*entities.Author, error) {
	return s.authors.GetByID(id)
}

func (s *CatalogService) SaveAuthor(user *entities.User, id uint, in AuthorInput) (*entities.Author, error) {
	author := &entities.Author{
		ID:        id,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		AddressID: in.AddressID,
	}

	fieldErrs := validators.FieldErrors{}
	if err := validators.Validate(author); err != nil {
		var fe validators.FieldErrors
		if !errors.As(err, &fe) {
			return author, err
		}
		fieldErrs = fe
	}
	if author.AddressID != nil {
		if msg, err := s.checkAddress(*author.AddressID, id); err != nil {
			return author, err
		} else if msg != "" {
			fieldErrs["address"] = msg
		}
	}
	mergeInputErrors(fieldErrs, in.InputErrors)
	if len(fieldErrs) > 0 {
		return author, fieldErrs
	}

	if id == 0 {
		if err := s.authors.Create(author); err != nil {
			return author, fmt.Errorf("failed to create author: %w", err)
		}
		s.adminLog.LogAddition(user, entities.ObjectTypeAuthor, author.ID, author.String())
		return author, nil
	}

	old, err := s.authors.GetByID(id)
	if err != nil {
		return author, err
	}
	if err := s.authors.Update(author); err != nil {
		return author, fmt.Errorf("failed to update author: %w", err)
	}
	changes := newChangeSet().
		add("first_name", old.FirstName != author.FirstName).
		add("last_name", old.LastName != author.LastName).
		add("address", !sameID(old.AddressID, author.AddressID))
	s.adminLog.LogChange(user, entities.ObjectTypeAuthor, author.ID, author.String(), changes.Message())
	return author, nil
}

func (s *CatalogService) checkAddress(addressID, authorID uint) (string, error) {
	if _, err := s.addresses.GetByID(addressID); err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return msgInvalidChoice, nil
		}
		return "", err
	}
	taken, err := s.authors.AddressTaken(addressID, authorID)
	if err != nil {
		return "", err
	}
	if taken {
		return msgAddressTaken, nil
	}
	return "", nil
}

// DeleteAuthor also deletes the author's books.
func (s *CatalogService) DeleteAuthor(user *entities.User, id uint) error {
	author, err := s.authors.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.authors.Delete(id); err != nil {
		return fmt.Errorf("failed to delete author: %w", err)
	}
	s.adminLog.LogDeletion(user, entities.ObjectTypeAuthor, id, author.String())
	return nil
}

// Books

// FilterBooks lists books for the admin, newest first.
func (s *CatalogService) FilterBooks(filter books.Filter) ([]entities.Book, error) {
	return s.books.List(filter)
}

func (s *CatalogService) Book(id uint) (*entities.Book, error) {
	return s.books.GetByID(id)
}

// SaveBook creates a book when id is 0 and updates it otherwise. A blank slug
// is filled from the title.
func (s *CatalogService) SaveBook(user *entities.User, id uint, in BookInput) (*entities.Book, error) {
	book := &entities.Book{
		ID:            id,
		Title:         strings.TrimSpace(in.Title),
		Rating:        in.Rating,
		AuthorID:      in.AuthorID,
		IsBestselling: in.IsBestselling,
		Slug:          strings.TrimSpace(in.Slug),
	}
	if book.Slug == "" {
		book.Slug = utils.SlugifyMax(book.Title, entities.SlugMaxLength)
	}

	fieldErrs := validators.FieldErrors{}
	if err := validators.Validate(book); err != nil {
		var fe validators.FieldErrors
		if !errors.As(err, &fe) {
			return book, err
		}
		fieldErrs = fe
	}

	if book.AuthorID != nil {
		if _, err := s.authors.GetByID(*book.AuthorID); err != nil {
			if !errors.Is(err, entities.ErrNotFound) {
				return book, err
			}
			fieldErrs["author"] = msgInvalidChoice
		}
	}

	countryIDs := uniqueIDs(in.CountryIDs)
	countries, err := s.countries.GetByIDs(countryIDs)
	if err != nil {
		return book, err
	}
	if len(countries) != len(countryIDs) {
		fieldErrs["published_countries"] = msgInvalidChoice
	}
	book.PublishedCountries = countries

	mergeInputErrors(fieldErrs, in.InputErrors)
	if len(fieldErrs) > 0 {
		return book, fieldErrs
	}

	if id == 0 {
		if err := s.books.Create(book); err != nil {
			return book, fmt.Errorf("failed to create book: %w", err)
		}
		s.adminLog.LogAddition(user, entities.ObjectTypeBook, book.ID, book.String())
		return book, nil
	}

	old, err := s.books.GetByID(id)
	if err != nil {
		return book, err
	}
	if err := s.books.Update(book); err != nil {
		return book, fmt.Errorf("failed to update book: %w", err)
	}
	changes := newChangeSet().
		add("title", old.Title != book.Title).
		add("rating", old.Rating != book.Rating).
		add("author", !sameID(old.AuthorID, book.AuthorID)).
		add("is_bestselling", old.IsBestselling != book.IsBestselling).
		add("slug", old.Slug != book.Slug).
		add("published_countries", !sameCountries(old.PublishedCountries, countries))
	s.adminLog.LogChange(user, entities.ObjectTypeBook, book.ID, book.String(), changes.Message())
	return book, nil
}

func (s *CatalogService) DeleteBook(user *entities.User, id uint) error {
	book, err := s.books.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	s.adminLog.LogDeletion(user, entities.ObjectTypeBook, id, book.String())
	return nil
}

// RegenerateMissingSlugs fills blank slugs from titles.
func (s *CatalogService) RegenerateMissingSlugs() (int, error) {
	return s.books.RegenerateMissingSlugs()
}

// mergeInputErrors lets conversion errors replace the validation message for
// the same field: "Enter a whole number." says more than a failed range check
// on the zero value.
func mergeInputErrors(dst, src validators.FieldErrors) {
	for field, msg := range src {
		dst[field] = msg
	}
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameCountries(a, b []entities.Country) bool {
	if len(a) != len(b) {
		return false
	}
	ids := make(map[uint]bool, len(a))
	for _, c := range a {
		ids[c.ID] = true
	}
	for _, c := range b {
		if !ids[c.ID] {
			return false
		}
	}
	return true
}
