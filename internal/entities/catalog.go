package entities

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Rating bounds for Book.Rating.
const (
	MinRating = 1
	MaxRating = 5
)

// SlugMaxLength matches the width of the books.slug column.
const SlugMaxLength = 50

type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null" json:"name" validate:"required,max=80"`
	Code      string    `gorm:"size:2;not null" json:"code" validate:"required,max=2"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c Country) String() string {
	return fmt.Sprintf("%s %s", c.Name, c.Code)
}

type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Street     string    `gorm:"size:80;not null" json:"street" validate:"required,max=80"`
	PostalCode string    `gorm:"size:5;not null" json:"postal_code" validate:"required,max=5"`
	City       string    `gorm:"size:50;not null" json:"city" validate:"required,max=50"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s", a.Street, a.PostalCode, a.City)
}

// Author owns at most one Address. Deleting the address deletes the author,
// and deleting the author deletes their books.
type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100;not null" json:"first_name" validate:"required,max=100"`
	LastName  string    `gorm:"size:100;not null" json:"last_name" validate:"required,max=100"`
	AddressID *uint     `gorm:"uniqueIndex" json:"address_id,omitempty"`
	Address   *Address  `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Author) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

func (a Author) String() string {
	return a.FullName()
}

type Book struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Title              string    `gorm:"size:50;not null" json:"title" validate:"required,max=50"`
	Rating             int       `gorm:"not null" json:"rating" validate:"min=1,max=5"`
	AuthorID           *uint     `gorm:"index" json:"author_id,omitempty"`
	Author             *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	IsBestselling      bool      `gorm:"not null;default:false" json:"is_bestselling"`
	Slug               string    `gorm:"size:50;not null;default:'';index" json:"slug" validate:"max=50,slug"`
	PublishedCountries []Country `gorm:"many2many:book_published_countries;" json:"published_countries,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (b Book) String() string {
	return fmt.Sprintf("%s (%d)", b.Title, b.Rating)
}

// AbsoluteURL is the public detail page of the book.
func (b Book) AbsoluteURL() string {
	return "/books/" + b.Slug
}

// AuthorName returns the author's full name or an empty string.
func (b Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.FullName()
}

func (Country) TableName() string {
	return "countries"
}

func (Address) TableName() string {
	return "addresses"
}

func (Author) TableName() string {
	return "authors"
}

func (Book) TableName() string {
	return "books"
}

// CatalogStats aggregates the book table for the listing page.
type CatalogStats struct {
	TotalBooks    int64       `json:"total_books"`
	AverageRating *float64    `json:"average_rating"` // nil when there are no books
	Bestsellers   int64       `json:"bestsellers"`
	Ratings       map[int]int `json:"ratings"`
}
