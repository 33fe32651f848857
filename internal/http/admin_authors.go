package http

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

var authorModel = modelInfo{
	Key:        "author",
	Name:       "author",
	Plural:     "Authors",
	URL:        "/admin/authors/",
	ObjectType: entities.ObjectTypeAuthor,
}

type authorResource struct {
	catalog *services.CatalogService
}

func (r *authorResource) info() modelInfo { return authorModel }

func (r *authorResource) list(_ *gin.Context) (*listPage, error) {
	authors, err := r.catalog.Authors()
	if err != nil {
		return nil, err
	}
	page := &listPage{Columns: []string{"Author"}}
	for _, author := range authors {
		page.Rows = append(page.Rows, listRow{
			URL:   changeURL(authorModel, author.ID),
			Cells: []string{author.String()},
		})
	}
	return page, nil
}

func (r *authorResource) get(id uint) (*adminObject, error) {
	author, err := r.catalog.Author(id)
	if err != nil {
		return nil, err
	}
	return &adminObject{
		ID:   author.ID,
		Repr: author.String(),
		Values: url.Values{
			"first_name": {author.FirstName},
			"last_name":  {author.LastName},
			"address":    {optionalIDString(author.AddressID)},
		},
	}, nil
}

// fields offers only addresses no other author lives at.
func (r *authorResource) fields(id uint, values url.Values, errs validators.FieldErrors) ([]formField, error) {
	addresses, err := r.catalog.AvailableAddresses(id)
	if err != nil {
		return nil, err
	}
	selected := values.Get("address")
	address := formField{
		Name:  "address",
		Label: "Address",
		Type:  "select",
		Error: errs.Get("address"),
	}
	for _, a := range addresses {
		value := uintString(a.ID)
		address.Options = append(address.Options, selectOption{
			Value:    value,
			Label:    a.String(),
			Selected: value == selected,
		})
	}

	return []formField{
		textField("first_name", "First name", values, errs, 100),
		textField("last_name", "Last name", values, errs, 100),
		address,
	}, nil
}

func (r *authorResource) save(user *entities.User, id uint, form url.Values) (*adminObject, error) {
	p := newFormParser(form)
	in := services.AuthorInput{
		FirstName:   p.text("first_name"),
		LastName:    p.text("last_name"),
		AddressID:   p.optionalID("address"),
		InputErrors: p.errs,
	}

	author, err := r.catalog.SaveAuthor(user, id, in)
	if err != nil {
		return nil, err
	}
	return &adminObject{ID: author.ID, Repr: author.String()}, nil
}

func (r *authorResource) deletion(id uint) (*deletionSummary, error) {
	author, err := r.catalog.Author(id)
	if err != nil {
		return nil, err
	}
	return &deletionSummary{
		Repr:    author.String(),
		Objects: []deletedObject{authorDeletionTree(author)},
	}, nil
}

func (r *authorResource) remove(user *entities.User, id uint) error {
	return r.catalog.DeleteAuthor(user, id)
}

// authorDeletionTree lists an author with the books deleted along with them.
func authorDeletionTree(author *entities.Author) deletedObject {
	node := deletedObject{Label: "Author: " + author.String()}
	for _, book := range author.Books {
		node.Children = append(node.Children, deletedObject{Label: "Book: " + book.String()})
	}
	return node
}
