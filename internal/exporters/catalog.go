package exporters

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"id", "title", "slug", "rating", "is_bestselling", "author", "author_address", "published_countries"}

// CatalogExporter writes catalog snapshots as JSON or CSV.
type CatalogExporter struct {
	books BookReader
	now   func() time.Time
}

func NewCatalogExporter(books BookReader) *CatalogExporter {
	return &CatalogExporter{books: books, now: time.Now}
}

type catalogDocument struct {
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Books      []BookRecord `json:"books"`
}

func (e *CatalogExporter) records() ([]BookRecord, error) {
	books, err := e.books.ListByTitleDesc()
	if err != nil {
		return nil, fmt.Errorf("failed to load books: %w", err)
	}
	records := make([]BookRecord, 0, len(books))
	for _, b := range books {
		records = append(records, NewBookRecord(b))
	}
	return records, nil
}

// WriteJSON writes the whole catalog as one indented JSON document.
func (e *CatalogExporter) WriteJSON(w io.Writer) error {
	records, err := e.records()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(catalogDocument{
		ExportedAt: e.now().UTC(),
		Count:      len(records),
		Books:      records,
	})
}

// WriteCSV streams one row per book. Country codes are joined with ";".
func (e *CatalogExporter) WriteCSV(w io.Writer) error {
	records, err := e.records()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Title,
			r.Slug,
			strconv.Itoa(r.Rating),
			strconv.FormatBool(r.IsBestselling),
			r.Author,
			r.AuthorAddress,
			strings.Join(r.PublishedCountries, ";"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportToDir writes catalog-<timestamp>.json and catalog-<timestamp>.csv
// into dir, creating it if needed, and returns the written paths.
func (e *CatalogExporter) ExportToDir(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	base := "catalog-" + e.now().UTC().Format("20060102-150405")
	targets := []struct {
		ext   string
		write func(io.Writer) error
	}{
		{".json", e.WriteJSON},
		{".csv", e.WriteCSV},
	}

	var written []string
	for _, target := range targets {
		path := filepath.Join(dir, base+target.ext)
		if err := writeFile(path, target.write); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	log.Printf("Exported catalog to %s", strings.Join(written, ", "))
	return written, nil
}

// writeFile writes through a temp file so readers never see a partial export.
func writeFile(path string, write func(io.Writer) error) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
