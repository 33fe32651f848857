package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/entities"
)

// Models lists every table managed by AutoMigrate, in dependency order.
var Models = []any{
	&entities.Country{},
	&entities.Address{},
	&entities.Author{},
	&entities.Book{},
	&entities.User{},
	&entities.AdminLogEntry{},
}

type Database struct {
	DB   *gorm.DB
	Type config.DatabaseType
}

// NewDatabase opens the configured database and migrates the schema.
func NewDatabase(cfg config.Database) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case config.DatabaseTypeSQLite, "":
		// Foreign keys stay off: cascades are handled by the repositories so
		// both backends behave the same.
		dialector = sqlite.Open(cfg.Path + "?_busy_timeout=5000")
	case config.DatabaseTypePostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for postgres")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	dbType := cfg.Type
	if dbType == "" {
		dbType = config.DatabaseTypeSQLite
	}

	if dbType == config.DatabaseTypeSQLite {
		log.Printf("Database initialized successfully at %s", cfg.Path)
	} else {
		log.Printf("Database initialized successfully (%s)", dbType)
	}

	return &Database{DB: db, Type: dbType}, nil
}

// NewSQLiteDatabase is a shorthand used by the CLI and tests.
func NewSQLiteDatabase(path string) (*Database, error) {
	return NewDatabase(config.Database{Type: config.DatabaseTypeSQLite, Path: path})
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks connectivity with a short timeout.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// IsSQLite reports whether the connection is backed by SQLite.
func (d *Database) IsSQLite() bool {
	return d.Type == config.DatabaseTypeSQLite
}
