package tasks

import (
	"context"
	"fmt"

	"github.com/mikestefanello/backlite"
)

// Queue names.
const (
	QueueRegenerateSlugs = "regenerate_slugs"
	QueueExportCatalog   = "export_catalog"
	QueuePruneAdminLog   = "prune_admin_log"
)

// TypeInfo describes a task type that can be triggered manually.
type TypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// Types lists the task types in the order they are shown.
func Types() []TypeInfo {
	return []TypeInfo{
		{Type: QueueRegenerateSlugs, Description: "Fill blank book slugs from their titles", Queue: QueueRegenerateSlugs},
		{Type: QueueExportCatalog, Description: "Write JSON and CSV snapshots of the catalog", Queue: QueueExportCatalog},
		{Type: QueuePruneAdminLog, Description: "Delete old admin log entries", Queue: QueuePruneAdminLog},
	}
}

// Dependencies are the services the queue processors call into.
type Dependencies struct {
	Books             SlugRegenerator
	Exporter          CatalogExporter
	AdminLog          AdminLogPruner
	ExportDir         string
	AdminLogRetention int
}

// Queues builds every queue with its processor.
func Queues(deps Dependencies) []backlite.Queue {
	return []backlite.Queue{
		backlite.NewQueue(RegenerateSlugsProcessor(deps.Books)),
		backlite.NewQueue(ExportCatalogProcessor(deps.Exporter, deps.ExportDir)),
		backlite.NewQueue(PruneAdminLogProcessor(deps.AdminLog)),
	}
}

// NewTask builds a task of the given type with the configured defaults.
func NewTask(taskType string, deps Dependencies) (backlite.Task, error) {
	switch taskType {
	case QueueRegenerateSlugs:
		return RegenerateSlugsTask{}, nil
	case QueueExportCatalog:
		return ExportCatalogTask{Dir: deps.ExportDir}, nil
	case QueuePruneAdminLog:
		return PruneAdminLogTask{RetentionDays: deps.AdminLogRetention}, nil
	}
	return nil, fmt.Errorf("unknown task type: %s", taskType)
}

// Run executes a task in the calling goroutine, bypassing the queue. Used
// when the queue is disabled.
func Run(ctx context.Context, task backlite.Task, deps Dependencies) error {
	switch t := task.(type) {
	case RegenerateSlugsTask:
		return RegenerateSlugsProcessor(deps.Books)(ctx, t)
	case ExportCatalogTask:
		return ExportCatalogProcessor(deps.Exporter, deps.ExportDir)(ctx, t)
	case PruneAdminLogTask:
		return PruneAdminLogProcessor(deps.AdminLog)(ctx, t)
	}
	return fmt.Errorf("unsupported task %T", task)
}

// Dispatcher enqueues tasks when a queue client is available and runs them
// inline otherwise.
type Dispatcher struct {
	client *Client
	deps   Dependencies
}

func NewDispatcher(client *Client, deps Dependencies) *Dispatcher {
	return &Dispatcher{client: client, deps: deps}
}

// Queued reports whether tasks go through the background queue.
func (d *Dispatcher) Queued() bool {
	return d.client != nil
}

// Dependencies returns the defaults tasks are built with.
func (d *Dispatcher) Dependencies() Dependencies {
	return d.deps
}

// Dispatch enqueues the task and returns its ID. Inline runs return an
// empty ID once the task has finished.
func (d *Dispatcher) Dispatch(ctx context.Context, task backlite.Task) (string, error) {
	if d.client == nil {
		return "", Run(ctx, task, d.deps)
	}
	ids, err := d.client.Enqueue(task)
	if err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", fmt.Errorf("task was not enqueued")
	}
	return ids[0], nil
}

// Status returns the status of a queued task.
func (d *Dispatcher) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	if d.client == nil {
		return backlite.TaskStatusNotFound, nil
	}
	return d.client.Status(ctx, taskID)
}
