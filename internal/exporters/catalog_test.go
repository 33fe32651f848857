package exporters

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookoutlet/internal/entities"
)

type stubBooks struct {
	books []entities.Book
	err   error
}

func (s stubBooks) ListByTitleDesc() ([]entities.Book, error) {
	return s.books, s.err
}

func sampleBooks() []entities.Book {
	address := &entities.Address{Street: "Privet Drive 4", PostalCode: "12345", City: "Little Whinging"}
	author := &entities.Author{FirstName: "J.K.", LastName: "Rowling", Address: address}
	return []entities.Book{
		{
			ID: 2, Title: "The Hobbit", Slug: "the-hobbit", Rating: 5,
			Author: &entities.Author{FirstName: "J.R.R.", LastName: "Tolkien"},
		},
		{
			ID: 1, Title: "Harry Potter", Slug: "harry-potter", Rating: 4, IsBestselling: true,
			Author: author,
			PublishedCountries: []entities.Country{
				{Name: "Germany", Code: "DE"},
				{Name: "United Kingdom", Code: "UK"},
			},
		},
		{ID: 3, Title: "Anonymous", Rating: 1},
	}
}

func newTestExporter(books []entities.Book) *CatalogExporter {
	e := NewCatalogExporter(stubBooks{books: books})
	e.now = func() time.Time { return time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC) }
	return e
}

func TestNewBookRecord(t *testing.T) {
	got := NewBookRecord(sampleBooks()[1])
	want := BookRecord{
		ID:                 1,
		Title:              "Harry Potter",
		Slug:               "harry-potter",
		Rating:             4,
		IsBestselling:      true,
		Author:             "J.K. Rowling",
		AuthorAddress:      "Privet Drive 4, 12345, Little Whinging",
		PublishedCountries: []string{"DE", "UK"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewBookRecord mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter(sampleBooks()).WriteJSON(&buf))

	var doc catalogDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 3, doc.Count)
	assert.Equal(t, "2024-06-15T14:30:00Z", doc.ExportedAt.Format(time.RFC3339))
	assert.Equal(t, "The Hobbit", doc.Books[0].Title)
	assert.Empty(t, doc.Books[2].Author)
	assert.NotNil(t, doc.Books[2].PublishedCountries)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter(sampleBooks()).WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"1", "Harry Potter", "harry-potter", "4", "true", "J.K. Rowling",
		"Privet Drive 4, 12345, Little Whinging", "DE;UK"}, rows[2])
	assert.Equal(t, []string{"3", "Anonymous", "", "1", "false", "", "", ""}, rows[3])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter(nil).WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExportToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	files, err := newTestExporter(sampleBooks()).ExportToDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "catalog-20240615-143000.json"),
		filepath.Join(dir, "catalog-20240615-143000.csv"),
	}, files)

	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files should be left behind")
}

func TestExportToDir_ReaderError(t *testing.T) {
	e := NewCatalogExporter(stubBooks{err: errors.New("database is locked")})

	_, err := e.ExportToDir(t.TempDir())
	assert.ErrorContains(t, err, "database is locked")
}
