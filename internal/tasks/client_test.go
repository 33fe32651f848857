package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookoutlet/internal/config"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "books.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDatabasePath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "books-tasks.db"), DatabasePath(filepath.Join("data", "books.db")))
	assert.Equal(t, filepath.Join("data", "catalog-tasks.db"), DatabasePath(filepath.Join("data", "catalog")))
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()

	client, err := NewClient(filepath.Join(tmpDir, "books.db"), DefaultConfig())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(tmpDir, "books-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")
	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)
	client.Start(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStop_NotStarted(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeBooks struct {
	calls chan struct{}
	err   error
}

func (f *fakeBooks) RegenerateMissingSlugs() (int, error) {
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return 2, f.err
}

type fakeExporter struct{ dirs []string }

func (f *fakeExporter) ExportToDir(dir string) ([]string, error) {
	f.dirs = append(f.dirs, dir)
	return []string{filepath.Join(dir, "catalog.json")}, nil
}

type fakePruner struct{ days []int }

func (f *fakePruner) Prune(retentionDays int) (int64, error) {
	f.days = append(f.days, retentionDays)
	return 1, nil
}

func TestEnqueue_RegenerateSlugs(t *testing.T) {
	client := newTestClient(t)

	books := &fakeBooks{calls: make(chan struct{}, 1)}
	client.Register(Queues(Dependencies{Books: books})...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	ids, err := client.Enqueue(RegenerateSlugsTask{})
	require.NoError(t, err)
	require.Len(t, ids, 1)

	select {
	case <-books.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestNewTask(t *testing.T) {
	deps := Dependencies{ExportDir: "/tmp/exports", AdminLogRetention: 30}

	task, err := NewTask(QueueExportCatalog, deps)
	require.NoError(t, err)
	assert.Equal(t, ExportCatalogTask{Dir: "/tmp/exports"}, task)

	task, err = NewTask(QueuePruneAdminLog, deps)
	require.NoError(t, err)
	assert.Equal(t, PruneAdminLogTask{RetentionDays: 30}, task)

	_, err = NewTask("enrich_everything", deps)
	assert.Error(t, err)
}

func TestRun_Inline(t *testing.T) {
	exporter := &fakeExporter{}
	pruner := &fakePruner{}
	deps := Dependencies{
		Books:     &fakeBooks{},
		Exporter:  exporter,
		AdminLog:  pruner,
		ExportDir: "exports",
	}
	ctx := context.Background()

	require.NoError(t, Run(ctx, RegenerateSlugsTask{}, deps))
	require.NoError(t, Run(ctx, ExportCatalogTask{}, deps))
	require.NoError(t, Run(ctx, ExportCatalogTask{Dir: "elsewhere"}, deps))
	require.NoError(t, Run(ctx, PruneAdminLogTask{}, deps))

	assert.Equal(t, []string{"exports", "elsewhere"}, exporter.dirs)
	assert.Equal(t, []int{DefaultAdminLogRetentionDays}, pruner.days)
}

func TestRun_PropagatesErrors(t *testing.T) {
	deps := Dependencies{Books: &fakeBooks{err: errors.New("disk full")}}

	err := Run(context.Background(), RegenerateSlugsTask{}, deps)
	assert.ErrorContains(t, err, "disk full")

	err = Run(context.Background(), ExportCatalogTask{}, Dependencies{})
	assert.ErrorContains(t, err, "not configured")
}

func TestTaskConfigs(t *testing.T) {
	tests := []struct {
		task backlite.Task
		name string
	}{
		{RegenerateSlugsTask{}, QueueRegenerateSlugs},
		{ExportCatalogTask{}, QueueExportCatalog},
		{PruneAdminLogTask{}, QueuePruneAdminLog},
	}
	for _, tt := range tests {
		cfg := tt.task.Config()
		assert.Equal(t, tt.name, cfg.Name)
		assert.NotNil(t, cfg.Retention)
		assert.Positive(t, cfg.Timeout)
	}
	assert.Len(t, Types(), len(tests))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Tasks{Workers: 4, TaskTimeout: time.Minute})

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
}

func TestDispatcher_Inline(t *testing.T) {
	pruner := &fakePruner{}
	d := NewDispatcher(nil, Dependencies{AdminLog: pruner})
	assert.False(t, d.Queued())

	id, err := d.Dispatch(context.Background(), PruneAdminLogTask{RetentionDays: 7})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, []int{7}, pruner.days)

	status, err := d.Status(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, backlite.TaskStatusNotFound, status)
}

func TestDispatcher_Queued(t *testing.T) {
	client := newTestClient(t)
	books := &fakeBooks{calls: make(chan struct{}, 1)}
	deps := Dependencies{Books: books}
	client.Register(Queues(deps)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client.Start(ctx)

	d := NewDispatcher(client, deps)
	assert.True(t, d.Queued())

	id, err := d.Dispatch(ctx, RegenerateSlugsTask{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case <-books.calls:
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}
