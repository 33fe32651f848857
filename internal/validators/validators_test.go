package validators

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookoutlet/internal/entities"
)

func TestValidate_Book(t *testing.T) {
	tests := []struct {
		name string
		book entities.Book
		want FieldErrors
	}{
		{
			name: "valid book",
			book: entities.Book{Title: "Dune", Rating: 5, Slug: "dune"},
			want: nil,
		},
		{
			name: "blank slug allowed",
			book: entities.Book{Title: "Dune", Rating: 1},
			want: nil,
		},
		{
			name: "rating below range",
			book: entities.Book{Title: "Dune", Rating: 0},
			want: FieldErrors{"rating": "Ensure this value is greater than or equal to 1."},
		},
		{
			name: "rating above range",
			book: entities.Book{Title: "Dune", Rating: 6},
			want: FieldErrors{"rating": "Ensure this value is less than or equal to 5."},
		},
		{
			name: "missing title and bad slug",
			book: entities.Book{Rating: 3, Slug: "not a slug"},
			want: FieldErrors{
				"title": "This field is required.",
				"slug":  "Enter a valid slug consisting of letters, numbers, underscores or hyphens.",
			},
		},
		{
			name: "title too long",
			book: entities.Book{Title: strings.Repeat("x", 51), Rating: 3},
			want: FieldErrors{"title": "Ensure this value has at most 50 characters."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.book)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			var got FieldErrors
			require.ErrorAs(t, err, &got)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("field errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidate_CountryAndAddress(t *testing.T) {
	err := Validate(entities.Country{Name: "Germany", Code: "DEU"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Ensure this value has at most 2 characters.", fe.Get("code"))

	err = Validate(entities.Address{Street: "Main", PostalCode: "123456", City: "Berlin"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "postal_code")
	assert.Len(t, fe, 1)

	assert.NoError(t, Validate(entities.Address{Street: "Main", PostalCode: "12345", City: "Berlin"}))
}

func TestFieldErrors_Error(t *testing.T) {
	fe := FieldErrors{"title": "required", "rating": "out of range"}
	assert.Equal(t, "validation failed: rating: out of range; title: required", fe.Error())
}
