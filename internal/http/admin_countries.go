package http

import (
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookoutlet/internal/entities"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/validators"
)

var countryModel = modelInfo{
	Key:        "country",
	Name:       "country",
	Plural:     "Countries",
	URL:        "/admin/countries/",
	ObjectType: entities.ObjectTypeCountry,
}

type countryResource struct {
	catalog *services.CatalogService
}

func (r *countryResource) info() modelInfo { return countryModel }

func (r *countryResource) list(_ *gin.Context) (*listPage, error) {
	countries, err := r.catalog.Countries()
	if err != nil {
		return nil, err
	}
	page := &listPage{Columns: []string{"Country"}}
	for _, country := range countries {
		page.Rows = append(page.Rows, listRow{
			URL:   changeURL(countryModel, country.ID),
			Cells: []string{country.String()},
		})
	}
	return page, nil
}

func (r *countryResource) get(id uint) (*adminObject, error) {
	country, err := r.catalog.Country(id)
	if err != nil {
		return nil, err
	}
	return &adminObject{
		ID:   country.ID,
		Repr: country.String(),
		Values: url.Values{
			"name": {country.Name},
			"code": {country.Code},
		},
	}, nil
}

func (r *countryResource) fields(_ uint, values url.Values, errs validators.FieldErrors) ([]formField, error) {
	return []formField{
		textField("name", "Name", values, errs, 80),
		textField("code", "Code", values, errs, 2),
	}, nil
}

func (r *countryResource) save(user *entities.User, id uint, form url.Values) (*adminObject, error) {
	p := newFormParser(form)
	country, err := r.catalog.SaveCountry(user, id, services.CountryInput{
		Name: p.text("name"),
		Code: p.text("code"),
	})
	if err != nil {
		return nil, err
	}
	return &adminObject{ID: country.ID, Repr: country.String()}, nil
}

func (r *countryResource) deletion(id uint) (*deletionSummary, error) {
	country, err := r.catalog.Country(id)
	if err != nil {
		return nil, err
	}
	return &deletionSummary{
		Repr:    country.String(),
		Objects: []deletedObject{{Label: "Country: " + country.String()}},
	}, nil
}

func (r *countryResource) remove(user *entities.User, id uint) error {
	return r.catalog.DeleteCountry(user, id)
}

func changeURL(m modelInfo, id uint) string {
	return m.URL + uintString(id) + "/change/"
}
