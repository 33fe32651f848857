package entrypoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/bookoutlet/internal/auth"
	"github.com/mrlokans/bookoutlet/internal/config"
	"github.com/mrlokans/bookoutlet/internal/demo"
	http_controllers "github.com/mrlokans/bookoutlet/internal/http"
	"github.com/mrlokans/bookoutlet/internal/logger"
	"github.com/mrlokans/bookoutlet/internal/scheduler"
	"github.com/mrlokans/bookoutlet/internal/tasks"
)

// Run wires every dependency and serves HTTP until ctx is cancelled. The
// server, the task workers and the maintenance scheduler share one
// errgroup: the first failure stops all of them.
func Run(ctx context.Context, cfg *config.Config, version string) error {
	logCloser := logger.Setup(cfg.Log)
	defer logCloser.Close()

	log.Printf("Starting Book Outlet v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true)

		result, err := demo.Seed(app.Catalog)
		if err != nil {
			return fmt.Errorf("failed to seed demo catalog: %w", err)
		}
		if !result.Skipped {
			log.Printf("Demo seed: %d countries, %d addresses, %d authors, %d books",
				result.Countries, result.Addresses, result.Authors, result.Books)
		}
	}

	deps := app.TaskDependencies()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()
		taskClient.Register(tasks.Queues(deps)...)
	} else {
		log.Printf("Task queue disabled - tasks run inline")
	}
	dispatcher := tasks.NewDispatcher(taskClient, deps)

	routerCfg := http_controllers.RouterConfig{
		Catalog:            app.Catalog,
		AdminLog:           app.AdminLog,
		Exporter:           app.Exporter,
		Database:           app.DB,
		Tasks:              dispatcher,
		AuthConfig:         cfg.Auth,
		SecureCookies:      cfg.Auth.SecureCookies,
		Demo:               demoMiddleware,
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		TemplatesPath:      cfg.UI.TemplatesPath,
		Version:            version,
	}

	sessionManager, err := newSessionManager(app)
	if err != nil {
		return err
	}
	routerCfg.SessionManager = sessionManager

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")
		if err := setupAuth(app, &routerCfg); err != nil {
			return err
		}
	} else {
		log.Printf("Authentication mode: none (admin is open to everyone)")
	}

	router := http_controllers.NewRouter(routerCfg)
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	maintenance := scheduler.NewMaintenanceScheduler(dispatcher, scheduler.Jobs(cfg))
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	g, gctx := errgroup.WithContext(ctx)

	if err := maintenance.Start(gctx); err != nil {
		return fmt.Errorf("failed to start maintenance scheduler: %w", err)
	}
	if taskClient != nil {
		taskClient.Start(gctx)
	}

	g.Go(func() error {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutdown Server, waiting %v before killing", timeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		maintenance.Stop()
		if taskClient != nil {
			taskClient.Stop(shutdownCtx)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}

// newSessionManager keeps sessions in the SQLite database and in memory for
// other backends. Flash messages need a session even without auth.
func newSessionManager(app *App) (*auth.SessionManager, error) {
	var sqlDB *sql.DB
	if app.DB.IsSQLite() {
		var err error
		sqlDB, err = app.DB.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, app.Config.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session manager: %w", err)
	}
	return sessionManager, nil
}

// setupAuth builds the auth middleware and the CSRF key for local auth mode.
func setupAuth(app *App, routerCfg *http_controllers.RouterConfig) error {
	cfg := app.Config

	secret := cfg.Auth.SessionSecret
	if secret == "" {
		var err error
		secret, err = auth.GenerateSessionSecret()
		if err != nil {
			return fmt.Errorf("failed to generate CSRF secret: %w", err)
		}
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	routerCfg.AuthService = app.Auth
	routerCfg.AuthMiddleware = auth.NewMiddleware(app.Auth, routerCfg.SessionManager, cfg.Auth)
	routerCfg.CSRFSecret = auth.CSRFKey(secret)

	hasUsers, err := app.Auth.HasUsers()
	if err != nil {
		return fmt.Errorf("failed to check admin users: %w", err)
	}
	if !hasUsers {
		log.Printf("No users found. Visit /admin/setup or run 'bookoutlet create-admin' to create an administrator account.")
	}
	return nil
}
