package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Admin is open to everyone (development only)
	AuthModeLocal AuthMode = "local" // Local admin users with sessions (default)
)

type DatabaseType string

const (
	DatabaseTypeSQLite   DatabaseType = "sqlite"
	DatabaseTypePostgres DatabaseType = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		UI
		Log
		Auth
		Tasks
		Export
		AdminLog
		Demo
		CORS
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Type DatabaseType
		Path string // SQLite file
		DSN  string // Postgres connection string
	}
	UI struct {
		TemplatesPath string // Empty means use the embedded templates
	}
	Log struct {
		Level      string
		File       string // Empty means stderr
		MaxSize    int    // Megabytes before rotation
		MaxBackups int
		MaxAge     int // Days
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}
	Export struct {
		Enabled  bool
		Dir      string
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
	}
	AdminLog struct {
		RetentionDays int
		Schedule      string
	}
	Demo struct {
		Enabled bool // Seed sample data and block writes
	}
	CORS struct {
		AllowedOrigins []string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_type", string(DatabaseTypeSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")

	v.SetDefault("templates_path", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size", 10)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age", 28)

	// Auth defaults
	v.SetDefault("auth_mode", string(AuthModeLocal))
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "12h") // Admin sessions
	v.SetDefault("auth_token_expiry", "720h")    // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", false)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("export_enabled", false)
	v.SetDefault("export_dir", "./exports")
	v.SetDefault("export_schedule", "0 3 * * *")

	v.SetDefault("admin_log_retention_days", 90)
	v.SetDefault("admin_log_schedule", "30 4 * * *")

	v.SetDefault("demo_mode", false)
	v.SetDefault("cors_allowed_origins", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Type: DatabaseType(strings.ToLower(v.GetString("DATABASE_TYPE"))),
			Path: v.GetString("DATABASE_PATH"),
			DSN:  v.GetString("DATABASE_DSN"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
		},
		Log: Log{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSize:    v.GetInt("LOG_MAX_SIZE"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAge:     v.GetInt("LOG_MAX_AGE"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Export: Export{
			Enabled:  v.GetBool("EXPORT_ENABLED"),
			Dir:      v.GetString("EXPORT_DIR"),
			Schedule: v.GetString("EXPORT_SCHEDULE"),
		},
		AdminLog: AdminLog{
			RetentionDays: v.GetInt("ADMIN_LOG_RETENTION_DAYS"),
			Schedule:      v.GetString("ADMIN_LOG_SCHEDULE"),
		},
		Demo: Demo{
			Enabled: v.GetBool("DEMO_MODE"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}
}

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
