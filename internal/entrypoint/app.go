package entrypoint

import (
	"fmt"
	"log"

	"github.com/mrlokans/bookoutlet/internal/audit"
	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/database"
	auditrepo "github.com/mrlokans/bookoutlet/internal/database/audit"
	"github.com/mrlokans/bookoutlet/internal/database/users"
	"github.com/mrlokans/bookoutlet/internal/exporters"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/tasks"
)

// App holds the database and the services built on top of it. The HTTP
// server and the one-shot CLI commands share it.
type App struct {
	Config   *config.Config
	DB       *database.Database
	Stores   services.Stores
	AdminLog *audit.Service
	Catalog  *services.CatalogService
	Exporter *exporters.CatalogExporter
	Auth     *auth.Service
}

// NewApp opens the database and wires the catalog services.
func NewApp(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	stores := services.NewStores(db.DB)
	adminLog := audit.NewService(auditrepo.NewRepository(db.DB))

	return &App{
		Config:   cfg,
		DB:       db,
		Stores:   stores,
		AdminLog: adminLog,
		Catalog:  services.NewCatalogService(stores, adminLog),
		Exporter: exporters.NewCatalogExporter(stores.Books),
		Auth:     auth.NewService(users.NewRepository(db.DB), cfg.Auth),
	}, nil
}

// TaskDependencies returns what the background task processors need.
func (a *App) TaskDependencies() tasks.Dependencies {
	return tasks.Dependencies{
		Books:             a.Catalog,
		Exporter:          a.Exporter,
		AdminLog:          a.AdminLog,
		ExportDir:         a.Config.Export.Dir,
		AdminLogRetention: a.Config.AdminLog.RetentionDays,
	}
}

func (a *App) Close() error {
	if err := a.DB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
		return err
	}
	return nil
}
