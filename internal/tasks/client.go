package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// Client wraps backlite with a dedicated SQLite database for the queues.
type Client struct {
	client *backlite.Client
	db     *sql.DB
	config Config

	mu      sync.RWMutex
	started bool
}

// DatabasePath returns the queue database stored next to the catalog
// database: "data/books.db" becomes "data/books-tasks.db".
func DatabasePath(mainDBPath string) string {
	dir := filepath.Dir(mainDBPath)
	base := filepath.Base(mainDBPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".db"
	}
	return filepath.Join(dir, name+"-tasks"+ext)
}

// NewClient opens the queue database and installs the backlite schema.
func NewClient(mainDBPath string, cfg Config) (*Client, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}

	db, err := sql.Open("sqlite3", DatabasePath(mainDBPath)+"?_journal=WAL&_timeout=5000&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 5)
	db.SetMaxIdleConns(cfg.Workers + 2)
	db.SetConnMaxLifetime(time.Hour)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          queueLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}

	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}

	return &Client{client: client, db: db, config: cfg}, nil
}

// Register adds queues. Call before Start.
func (c *Client) Register(queues ...backlite.Queue) {
	for _, q := range queues {
		c.client.Register(q)
	}
}

// Start begins dispatching tasks to the workers. It does not block.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return
	}
	c.started = true

	log.Printf("Task queue started with %d workers", c.config.Workers)
	c.client.Start(ctx)
}

// Stop waits for running tasks until ctx expires. It reports whether every
// worker finished in time.
func (c *Client) Stop(ctx context.Context) bool {
	c.mu.RLock()
	started := c.started
	c.mu.RUnlock()
	if !started {
		return true
	}

	log.Println("Stopping task queue...")
	if !c.client.Stop(ctx) {
		log.Println("Task queue stopped with timeout (some tasks may not have completed)")
		return false
	}
	log.Println("Task queue stopped gracefully")
	return true
}

// Close releases the queue database. Call after Stop.
func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Enqueue saves the tasks and returns their IDs.
func (c *Client) Enqueue(tasks ...backlite.Task) ([]string, error) {
	return c.client.Add(tasks...).Save()
}

// Status returns the status of a task by ID.
func (c *Client) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return c.client.Status(ctx, taskID)
}

type queueLogger struct{}

func (queueLogger) Info(message string, params ...any) {
	log.Println(formatLog("[TASK] "+message, params))
}

func (queueLogger) Error(message string, params ...any) {
	log.Println(formatLog("[TASK ERROR] "+message, params))
}

// formatLog renders backlite's key/value pairs as "msg key=value ...".
func formatLog(message string, params []any) string {
	var b strings.Builder
	b.WriteString(message)
	for i := 0; i+1 < len(params); i += 2 {
		fmt.Fprintf(&b, " %v=%v", params[i], params[i+1])
	}
	return b.String()
}
