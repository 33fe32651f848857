package http

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/database/books"
	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

var bookModel = modelInfo{
	Key:        "book",
	Name:       "book",
	Plural:     "Books",
	URL:        "/admin/books/",
	ObjectType: entities.ObjectTypeBook,
}

type bookResource struct {
	catalog *services.CatalogService
}

func (r *bookResource) info() modelInfo { return bookModel }

// list shows title and author, filterable by author and rating.
func (r *bookResource) list(c *gin.Context) (*listPage, error) {
	query := c.Request.URL.Query()
	var filter books.Filter
	if id, ok := parseOptionalID(query.Get("author")); ok && id != nil {
		filter.AuthorID = *id
	}
	if rating, err := strconv.Atoi(query.Get("rating")); err == nil {
		filter.Rating = rating
	}

	list, err := r.catalog.FilterBooks(filter)
	if err != nil {
		return nil, err
	}
	authors, err := r.catalog.Authors()
	if err != nil {
		return nil, err
	}

	page := &listPage{
		Columns: []string{"Title", "Author"},
		Actions: []listAction{{Label: "Regenerate missing slugs", URL: bookModel.URL + "regenerate-slugs/"}},
	}
	for _, book := range list {
		author := book.AuthorName()
		if author == "" {
			author = "-"
		}
		page.Rows = append(page.Rows, listRow{
			URL:   changeURL(bookModel, book.ID),
			Cells: []string{book.Title, author},
		})
	}

	byAuthor := filterGroup{Title: "author", Options: []filterOption{
		{Label: "All", URL: filterURL(query, "author", ""), Selected: filter.AuthorID == 0},
	}}
	for _, a := range authors {
		byAuthor.Options = append(byAuthor.Options, filterOption{
			Label:    a.String(),
			URL:      filterURL(query, "author", uintString(a.ID)),
			Selected: filter.AuthorID == a.ID,
		})
	}

	byRating := filterGroup{Title: "rating", Options: []filterOption{
		{Label: "All", URL: filterURL(query, "rating", ""), Selected: filter.Rating == 0},
	}}
	for rating := entities.MinRating; rating <= entities.MaxRating; rating++ {
		byRating.Options = append(byRating.Options, filterOption{
			Label:    strconv.Itoa(rating),
			URL:      filterURL(query, "rating", strconv.Itoa(rating)),
			Selected: filter.Rating == rating,
		})
	}

	page.Filters = []filterGroup{byAuthor, byRating}
	return page, nil
}

// filterURL keeps the other active filters and sets or clears key.
func filterURL(current url.Values, key, value string) string {
	next := url.Values{}
	for k, v := range current {
		next[k] = v
	}
	if value == "" {
		next.Del(key)
	} else {
		next.Set(key, value)
	}
	if len(next) == 0 {
		return "?"
	}
	return "?" + next.Encode()
}

func (r *bookResource) get(id uint) (*adminObject, error) {
	book, err := r.catalog.Book(id)
	if err != nil {
		return nil, err
	}
	values := url.Values{
		"title":  {book.Title},
		"rating": {strconv.Itoa(book.Rating)},
		"author": {optionalIDString(book.AuthorID)},
		"slug":   {book.Slug},
	}
	if book.IsBestselling {
		values.Set("is_bestselling", "on")
	}
	for _, country := range book.PublishedCountries {
		values.Add("published_countries", uintString(country.ID))
	}

	obj := &adminObject{ID: book.ID, Repr: book.String(), Values: values}
	if book.Slug != "" {
		obj.ViewURL = book.AbsoluteURL()
	}
	return obj, nil
}

func (r *bookResource) fields(_ uint, values url.Values, errs validators.FieldErrors) ([]formField, error) {
	authors, err := r.catalog.Authors()
	if err != nil {
		return nil, err
	}
	countries, err := r.catalog.Countries()
	if err != nil {
		return nil, err
	}

	author := formField{Name: "author", Label: "Author", Type: "select", Error: errs.Get("author")}
	for _, a := range authors {
		value := uintString(a.ID)
		author.Options = append(author.Options, selectOption{
			Value:    value,
			Label:    a.String(),
			Selected: value == values.Get("author"),
		})
	}

	chosen := make(map[string]bool)
	for _, v := range values["published_countries"] {
		chosen[v] = true
	}
	published := formField{
		Name:  "published_countries",
		Label: "Published countries",
		Type:  "multiselect",
		Error: errs.Get("published_countries"),
		Help:  "Hold down “Control”, or “Command” on a Mac, to select more than one.",
	}
	for _, c := range countries {
		value := uintString(c.ID)
		published.Options = append(published.Options, selectOption{
			Value:    value,
			Label:    c.String(),
			Selected: chosen[value],
		})
	}

	rating := textField("rating", "Rating", values, errs, 0)
	rating.Type = "number"
	rating.Help = "From 1 to 5."

	slug := textField("slug", "Slug", values, errs, entities.SlugMaxLength)
	slug.Required = false
	slug.PrepopulateFrom = "title"
	slug.Help = "Filled from the title when left blank."

	return []formField{
		textField("title", "Title", values, errs, 50),
		rating,
		author,
		{
			Name:    "is_bestselling",
			Label:   "Is bestselling",
			Type:    "checkbox",
			Checked: values.Get("is_bestselling") != "",
			Error:   errs.Get("is_bestselling"),
		},
		slug,
		published,
	}, nil
}

func (r *bookResource) save(user *entities.User, id uint, form url.Values) (*adminObject, error) {
	p := newFormParser(form)
	in := services.BookInput{
		Title:         p.text("title"),
		Rating:        p.integer("rating"),
		AuthorID:      p.optionalID("author"),
		IsBestselling: p.checkbox("is_bestselling"),
		Slug:          p.text("slug"),
		CountryIDs:    p.ids("published_countries"),
		InputErrors:   p.errs,
	}

	book, err := r.catalog.SaveBook(user, id, in)
	if err != nil {
		return nil, err
	}
	return &adminObject{ID: book.ID, Repr: book.String()}, nil
}

// deletion lists the book and the publication links removed with it.
func (r *bookResource) deletion(id uint) (*deletionSummary, error) {
	book, err := r.catalog.Book(id)
	if err != nil {
		return nil, err
	}
	summary := &deletionSummary{
		Repr:    book.String(),
		Objects: []deletedObject{{Label: "Book: " + book.String()}},
	}
	for _, country := range book.PublishedCountries {
		summary.Links = append(summary.Links, "Published in "+country.String())
	}
	return summary, nil
}

func (r *bookResource) remove(user *entities.User, id uint) error {
	return r.catalog.DeleteBook(user, id)
}
