package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// CatalogExporter writes catalog snapshots into a directory.
type CatalogExporter interface {
	ExportToDir(dir string) ([]string, error)
}

// ExportCatalogTask writes a JSON and a CSV snapshot of the catalog to Dir.
type ExportCatalogTask struct {
	Dir string `json:"dir"`
}

func (t ExportCatalogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueExportCatalog,
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 7 * 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExportCatalogProcessor creates the processor for ExportCatalogTask.
// Tasks without a directory fall back to defaultDir.
func ExportCatalogProcessor(exporter CatalogExporter, defaultDir string) backlite.QueueProcessor[ExportCatalogTask] {
	return func(ctx context.Context, task ExportCatalogTask) error {
		if exporter == nil {
			return fmt.Errorf("catalog exporter not configured")
		}
		dir := task.Dir
		if dir == "" {
			dir = defaultDir
		}
		if dir == "" {
			return fmt.Errorf("export directory not configured")
		}

		files, err := exporter.ExportToDir(dir)
		if err != nil {
			return fmt.Errorf("export catalog: %w", err)
		}
		log.Printf("[TASK] Exported catalog to %v", files)
		return nil
	}
}
