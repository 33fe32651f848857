package http

import (
	"github.com/mrlokans/bookoutlet/internal/audit"
	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/database"
	"github.com/mrlokans/bookoutlet/internal/demo"
	"github.com/mrlokans/bookoutlet/internal/exporters"
	"github.com/mrlokans/bookoutlet/internal/services"
	"github.com/mrlokans/bookoutlet/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Catalog  *services.CatalogService
	AdminLog *audit.Service
	Exporter *exporters.CatalogExporter
	Database *database.Database

	// Task dispatcher; runs tasks inline when the queue is disabled
	Tasks *tasks.Dispatcher

	// Authentication
	AuthConfig     config.Auth
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool

	// Demo mode (optional)
	Demo *demo.Middleware

	// Origins allowed to call the JSON API from a browser
	CORSAllowedOrigins []string

	// Empty means the embedded templates
	TemplatesPath string

	// Application info
	Version string
}
