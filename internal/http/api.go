package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
)

// CatalogAPIController exposes the catalog read-only as JSON.
type CatalogAPIController struct {
	catalog *services.CatalogService
}

func NewCatalogAPIController(catalog *services.CatalogService) *CatalogAPIController {
	return &CatalogAPIController{catalog: catalog}
}

// BooksResponse mirrors the listing page.
type BooksResponse struct {
	Books         []entities.Book `json:"books"`
	Count         int64           `json:"count"`
	AverageRating *float64        `json:"average_rating"`
}

// GetAllBooks handles GET /api/books
func (ac *CatalogAPIController) GetAllBooks(c *gin.Context) {
	books, stats, err := ac.catalog.Listing()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	if books == nil {
		books = []entities.Book{}
	}
	c.JSON(http.StatusOK, BooksResponse{
		Books:         books,
		Count:         stats.TotalBooks,
		AverageRating: stats.AverageRating,
	})
}

// GetBook handles GET /api/books/:slug
func (ac *CatalogAPIController) GetBook(c *gin.Context) {
	book, err := ac.catalog.BookBySlug(c.Param("slug"))
	if errors.Is(err, entities.ErrNotFound) {
		respondNotFound(c, "book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// GetAuthors handles GET /api/authors
func (ac *CatalogAPIController) GetAuthors(c *gin.Context) {
	authors, err := ac.catalog.Authors()
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	if authors == nil {
		authors = []entities.Author{}
	}
	c.JSON(http.StatusOK, gin.H{"authors": authors, "count": len(authors)})
}

// GetCountries handles GET /api/countries
func (ac *CatalogAPIController) GetCountries(c *gin.Context) {
	countries, err := ac.catalog.Countries()
	if err != nil {
		respondInternalError(c, err, "list countries")
		return
	}
	if countries == nil {
		countries = []entities.Country{}
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries, "count": len(countries)})
}

// GetStats handles GET /api/stats
func (ac *CatalogAPIController) GetStats(c *gin.Context) {
	stats, err := ac.catalog.Stats()
	if err != nil {
		respondInternalError(c, err, "stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}
