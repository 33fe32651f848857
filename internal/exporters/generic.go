package exporters

import "github.com/mrlokans/bookoutlet/internal/entities"

// BookReader supplies the books to export, in listing order.
type BookReader interface {
	ListByTitleDesc() ([]entities.Book, error)
}

// BookRecord is the flat form of a book written to JSON and CSV exports.
type BookRecord struct {
	ID                 uint     `json:"id"`
	Title              string   `json:"title"`
	Slug               string   `json:"slug"`
	Rating             int      `json:"rating"`
	IsBestselling      bool     `json:"is_bestselling"`
	Author             string   `json:"author"`
	AuthorAddress      string   `json:"author_address,omitempty"`
	PublishedCountries []string `json:"published_countries"`
}

// NewBookRecord flattens a book with its preloaded relations.
func NewBookRecord(book entities.Book) BookRecord {
	record := BookRecord{
		ID:                 book.ID,
		Title:              book.Title,
		Slug:               book.Slug,
		Rating:             book.Rating,
		IsBestselling:      book.IsBestselling,
		Author:             book.AuthorName(),
		PublishedCountries: make([]string, 0, len(book.PublishedCountries)),
	}
	if book.Author != nil && book.Author.Address != nil {
		record.AuthorAddress = book.Author.Address.String()
	}
	for _, c := range book.PublishedCountries {
		record.PublishedCountries = append(record.PublishedCountries, c.Code)
	}
	return record
}
