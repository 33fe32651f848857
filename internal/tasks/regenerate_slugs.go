package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// SlugRegenerator fills blank book slugs from their titles.
type SlugRegenerator interface {
	RegenerateMissingSlugs() (int, error)
}

// RegenerateSlugsTask backfills slugs for books saved without one.
type RegenerateSlugsTask struct{}

func (t RegenerateSlugsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueueRegenerateSlugs,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RegenerateSlugsProcessor creates the processor for RegenerateSlugsTask.
func RegenerateSlugsProcessor(books SlugRegenerator) backlite.QueueProcessor[RegenerateSlugsTask] {
	return func(ctx context.Context, task RegenerateSlugsTask) error {
		if books == nil {
			return fmt.Errorf("slug regenerator not configured")
		}
		updated, err := books.RegenerateMissingSlugs()
		if err != nil {
			return fmt.Errorf("regenerate slugs: %w", err)
		}
		log.Printf("[TASK] Regenerated %d missing slugs", updated)
		return nil
	}
}
