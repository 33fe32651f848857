package http

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/tasks"
	"github.com/mrlokans/bookoutlet/internal/web"
)

// RequestIDHeader carries the per-request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(RequestID())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSAllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Authorization", "Content-Type", auth.CSRFTokenHeader, RequestIDHeader},
			ExposeHeaders: []string{RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	authEnabled := cfg.AuthConfig.Mode == config.AuthModeLocal && cfg.AuthService != nil

	// CSRF must run before session so that session context is preserved
	if authEnabled && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	authMiddleware := cfg.AuthMiddleware
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(cfg.AuthService, cfg.SessionManager, config.Auth{Mode: config.AuthModeNone})
	}
	router.Use(authMiddleware.Handler())

	if cfg.Demo != nil && cfg.Demo.IsEnabled() {
		router.Use(cfg.Demo.InjectContext())
		router.Use(cfg.Demo.Handler())
	}

	router.SetHTMLTemplate(template.Must(web.Templates(cfg.TemplatesPath)))
	router.StaticFS("/static", web.Static())

	dispatcher := cfg.Tasks
	if dispatcher == nil {
		dispatcher = tasks.NewDispatcher(nil, tasks.Dependencies{
			Books:    cfg.Catalog,
			Exporter: cfg.Exporter,
			AdminLog: cfg.AdminLog,
		})
	}

	v := view{sessions: cfg.SessionManager, authEnabled: authEnabled}
	public := NewPublicController(cfg.Catalog, v)
	catalogAPI := NewCatalogAPIController(cfg.Catalog)
	health := NewHealthController(cfg.Database, cfg.Version)
	tasksController := NewTasksController(dispatcher)
	admin := NewAdminController(cfg.Catalog, cfg.AdminLog, cfg.Exporter, dispatcher, v)

	// Public site
	router.GET("/", public.Index)
	router.GET("/books/:slug", public.BookDetail)
	router.NoRoute(public.NotFound)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", Ping)

	// Catalog API
	router.GET("/api/books", catalogAPI.GetAllBooks)
	router.GET("/api/books/:slug", catalogAPI.GetBook)
	router.GET("/api/authors", catalogAPI.GetAuthors)
	router.GET("/api/countries", catalogAPI.GetCountries)
	router.GET("/api/stats", catalogAPI.GetStats)

	// Task queue endpoints
	taskRoutes := router.Group("/api/tasks")
	taskRoutes.GET("/types", tasksController.ListTaskTypes)
	taskRoutes.GET("/:id", tasksController.GetTaskStatus)
	taskRoutes.POST("/:type/run", authMiddleware.RequireAuth(), authMiddleware.RequireWriteAccess(), tasksController.RunTask)

	// Login, logout and first-run setup stay outside the protected group
	if authEnabled {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	adminRoutes := router.Group("/admin", authMiddleware.RequireAuth(), authMiddleware.RequireWriteAccess())
	admin.RegisterRoutes(adminRoutes)
	if authEnabled {
		tokenController := auth.NewAPITokenController(cfg.AuthService)
		adminRoutes.POST("/token", tokenController.GenerateToken)
		adminRoutes.DELETE("/token", tokenController.RevokeToken)
	}

	return router
}
