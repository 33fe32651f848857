package http

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

var addressModel = modelInfo{
	Key:        "address",
	Name:       "address",
	Plural:     "Address Entries",
	URL:        "/admin/addresses/",
	ObjectType: entities.ObjectTypeAddress,
}

type addressResource struct {
	catalog *services.CatalogService
}

func (r *addressResource) info() modelInfo { return addressModel }

func (r *addressResource) list(_ *gin.Context) (*listPage, error) {
	addresses, err := r.catalog.Addresses()
	if err != nil {
		return nil, err
	}
	page := &listPage{Columns: []string{"Address"}}
	for _, address := range addresses {
		page.Rows = append(page.Rows, listRow{
			URL:   changeURL(addressModel, address.ID),
			Cells: []string{address.String()},
		})
	}
	return page, nil
}

func (r *addressResource) get(id uint) (*adminObject, error) {
	address, err := r.catalog.Address(id)
	if err != nil {
		return nil, err
	}
	return &adminObject{
		ID:   address.ID,
		Repr: address.String(),
		Values: url.Values{
			"street":      {address.Street},
			"postal_code": {address.PostalCode},
			"city":        {address.City},
		},
	}, nil
}

func (r *addressResource) fields(_ uint, values url.Values, errs validators.FieldErrors) ([]formField, error) {
	return []formField{
		textField("street", "Street", values, errs, 80),
		textField("postal_code", "Postal code", values, errs, 5),
		textField("city", "City", values, errs, 50),
	}, nil
}

func (r *addressResource) save(user *entities.User, id uint, form url.Values) (*adminObject, error) {
	p := newFormParser(form)
	address, err := r.catalog.SaveAddress(user, id, services.AddressInput{
		Street:     p.text("street"),
		PostalCode: p.text("postal_code"),
		City:       p.text("city"),
	})
	if err != nil {
		return nil, err
	}
	return &adminObject{ID: address.ID, Repr: address.String()}, nil
}

// deletion lists the address, the author living there and that author's books.
func (r *addressResource) deletion(id uint) (*deletionSummary, error) {
	address, err := r.catalog.Address(id)
	if err != nil {
		return nil, err
	}
	root := deletedObject{Label: "Address: " + address.String()}

	owner, err := r.catalog.AddressOwner(id)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		root.Children = []deletedObject{authorDeletionTree(owner)}
	}

	return &deletionSummary{
		Repr:    address.String(),
		Objects: []deletedObject{root},
	}, nil
}

func (r *addressResource) remove(user *entities.User, id uint) error {
	return r.catalog.DeleteAddress(user, id)
}
