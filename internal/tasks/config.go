package tasks

import (
	"time"

	"github.com/mrlokans/bookoutlet/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	Workers           int           // default 2
	MaxRetries        int           // default 3
	RetryDelay        time.Duration // default 1m
	TaskTimeout       time.Duration // default 5m
	ReleaseAfter      time.Duration // stuck tasks go back to the queue; default 15m
	CleanupInterval   time.Duration // default 1h
	RetentionDuration time.Duration // how long finished tasks are kept; default 24h
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// ConfigFrom fills zero values of the environment settings with defaults.
func ConfigFrom(cfg config.Tasks) Config {
	out := DefaultConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	if cfg.MaxRetries > 0 {
		out.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryDelay > 0 {
		out.RetryDelay = cfg.RetryDelay
	}
	if cfg.TaskTimeout > 0 {
		out.TaskTimeout = cfg.TaskTimeout
	}
	if cfg.ReleaseAfter > 0 {
		out.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		out.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.RetentionDuration > 0 {
		out.RetentionDuration = cfg.RetentionDuration
	}
	return out
}
