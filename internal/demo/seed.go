package demo

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mrlokans/bookoutlet/internal/services"
)

//go:embed assets/catalog.json
var sampleCatalog []byte

type fixture struct {
	Countries []services.CountryInput `json:"countries"`
	Addresses []struct {
		Street     string `json:"street"`
		PostalCode string `json:"postal_code"`
		City       string `json:"city"`
	} `json:"addresses"`
	Authors []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Address   *int   `json:"address"`
	} `json:"authors"`
	Books []struct {
		Title         string   `json:"title"`
		Rating        int      `json:"rating"`
		Author        *int     `json:"author"`
		IsBestselling bool     `json:"is_bestselling"`
		Countries     []string `json:"countries"`
	} `json:"books"`
}

// SeedResult counts the records inserted by Seed.
type SeedResult struct {
	Skipped   bool
	Countries int
	Addresses int
	Authors   int
	Books     int
}

// Seed inserts the sample catalog unless the catalog already has data.
func Seed(catalog *services.CatalogService) (SeedResult, error) {
	var result SeedResult

	counts, err := catalog.Counts()
	if err != nil {
		return result, err
	}
	if counts.Countries+counts.Addresses+counts.Authors+counts.Books > 0 {
		log.Printf("Demo seed: catalog is not empty, skipping")
		result.Skipped = true
		return result, nil
	}

	var data fixture
	if err := json.Unmarshal(sampleCatalog, &data); err != nil {
		return result, fmt.Errorf("parse sample catalog: %w", err)
	}

	countryIDs := make(map[string]uint, len(data.Countries))
	for _, in := range data.Countries {
		country, err := catalog.SaveCountry(nil, 0, in)
		if err != nil {
			return result, fmt.Errorf("seed country %s: %w", in.Name, err)
		}
		countryIDs[country.Code] = country.ID
		result.Countries++
	}

	addressIDs := make([]uint, 0, len(data.Addresses))
	for _, in := range data.Addresses {
		address, err := catalog.SaveAddress(nil, 0, services.AddressInput{
			Street:     in.Street,
			PostalCode: in.PostalCode,
			City:       in.City,
		})
		if err != nil {
			return result, fmt.Errorf("seed address %s: %w", in.Street, err)
		}
		addressIDs = append(addressIDs, address.ID)
		result.Addresses++
	}

	authorIDs := make([]uint, 0, len(data.Authors))
	for _, in := range data.Authors {
		input := services.AuthorInput{FirstName: in.FirstName, LastName: in.LastName}
		if in.Address != nil {
			input.AddressID = &addressIDs[*in.Address]
		}
		author, err := catalog.SaveAuthor(nil, 0, input)
		if err != nil {
			return result, fmt.Errorf("seed author %s %s: %w", in.FirstName, in.LastName, err)
		}
		authorIDs = append(authorIDs, author.ID)
		result.Authors++
	}

	for _, in := range data.Books {
		input := services.BookInput{
			Title:         in.Title,
			Rating:        in.Rating,
			IsBestselling: in.IsBestselling,
		}
		if in.Author != nil {
			input.AuthorID = &authorIDs[*in.Author]
		}
		for _, code := range in.Countries {
			input.CountryIDs = append(input.CountryIDs, countryIDs[code])
		}
		if _, err := catalog.SaveBook(nil, 0, input); err != nil {
			return result, fmt.Errorf("seed book %s: %w", in.Title, err)
		}
		result.Books++
	}

	log.Printf("Demo seed: added %d countries, %d addresses, %d authors and %d books",
		result.Countries, result.Addresses, result.Authors, result.Books)
	return result, nil
}
