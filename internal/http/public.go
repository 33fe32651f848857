package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
)

// UnknownAuthor is shown on the detail page of a book without an author.
const UnknownAuthor = "Unknown author"

// PublicController serves the book listing and detail pages.
type PublicController struct {
	catalog *services.CatalogService
	view    view
}

func NewPublicController(catalog *services.CatalogService, v view) *PublicController {
	return &PublicController{catalog: catalog, view: v}
}

// Index handles GET /
func (pc *PublicController) Index(c *gin.Context) {
	books, stats, err := pc.catalog.Listing()
	if err != nil {
		pc.view.serverError(c, err, "listing")
		return
	}

	data := pc.view.data(c, "All Books")
	data["Books"] = books
	data["Total"] = stats.TotalBooks
	data["AverageRating"] = stats.AverageRating
	c.HTML(http.StatusOK, "index", data)
}

// BookDetail handles GET /books/:slug
func (pc *PublicController) BookDetail(c *gin.Context) {
	book, err := pc.catalog.BookBySlug(c.Param("slug"))
	if errors.Is(err, entities.ErrNotFound) {
		pc.view.notFound(c, "No book matches the given query.")
		return
	}
	if err != nil {
		pc.view.serverError(c, err, "book detail")
		return
	}

	author := book.AuthorName()
	if author == "" {
		author = UnknownAuthor
	}

	data := pc.view.data(c, book.Title)
	data["Book"] = book
	data["BookTitle"] = book.Title
	data["Author"] = author
	data["Rating"] = book.Rating
	data["IsBestseller"] = book.IsBestselling
	c.HTML(http.StatusOK, "book_detail", data)
}

// NotFound renders the 404 page, or a JSON error under /api/.
func (pc *PublicController) NotFound(c *gin.Context) {
	if isAPIPath(c) {
		respondNotFound(c, "resource")
		return
	}
	pc.view.notFound(c, "")
}
