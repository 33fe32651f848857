package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAdminLogRetentionDays applies when a prune task carries no retention.
const DefaultAdminLogRetentionDays = 90

// AdminLogPruner deletes admin log entries older than the retention period.
type AdminLogPruner interface {
	Prune(retentionDays int) (int64, error)
}

// PruneAdminLogTask removes old admin log entries.
type PruneAdminLogTask struct {
	RetentionDays int `json:"retention_days"`
}

func (t PruneAdminLogTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        QueuePruneAdminLog,
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// PruneAdminLogProcessor creates the processor for PruneAdminLogTask.
func PruneAdminLogProcessor(pruner AdminLogPruner) backlite.QueueProcessor[PruneAdminLogTask] {
	return func(ctx context.Context, task PruneAdminLogTask) error {
		if pruner == nil {
			return fmt.Errorf("admin log pruner not configured")
		}
		days := task.RetentionDays
		if days <= 0 {
			days = DefaultAdminLogRetentionDays
		}

		deleted, err := pruner.Prune(days)
		if err != nil {
			return fmt.Errorf("prune admin log: %w", err)
		}
		log.Printf("[TASK] Pruned %d admin log entries older than %d days", deleted, days)
		return nil
	}
}
