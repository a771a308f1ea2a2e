package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/certquest/sessiond/internal/session/http"
	"github.com/certquest/sessiond/internal/session/service"
	"github.com/certquest/sessiond/internal/session/store"
	"github.com/certquest/sessiond/internal/session/store/drivers/sqlite"
	"github.com/certquest/sessiond/pkg/identity"
	"github.com/certquest/sessiond/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the session service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	codec    *service.CookieCodec
	firebase *identity.Firebase

	// Services
	refreshService      *service.RefreshService
	accountService      *service.AccountService
	sessionInfoService  *service.SessionInfoService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "session-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initIdentity(context.Background()); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("session service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down session service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("session service stopped")
	return nil
}

// initDatabase opens the account and ledger database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initIdentity(ctx context.Context) error {
	fb, err := identity.NewFirebase(ctx, identity.FirebaseConfig{
		ProjectID:       app.cfg.FirebaseProjectID,
		CredentialsFile: app.cfg.FirebaseCredentialsFile,
		CheckRevoked:    app.cfg.FirebaseCheckRevoked,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize identity provider: %w", err)
	}
	app.firebase = fb
	return nil
}

// initCodec derives the session key. A missing secret is not fatal: the
// service starts and answers every mint with SERVER_CONFIGURATION_ERROR.
func (app *Application) initCodec() error {
	codec, err := service.NewCookieCodec(service.CookieConfig{
		Name:       app.cfg.CookieName,
		Domain:     app.cfg.CookieDomain,
		Production: app.cfg.Production(),
		TTL:        app.cfg.SessionTTL,
	}, app.cfg.JoseSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize session codec: %w", err)
	}
	codec.Ledger = app.db

	if !codec.Configured() {
		app.logger.Error("JOSE_SECRET is not set; session cookies cannot be issued")
	}
	app.codec = codec
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.refreshService = &service.RefreshService{
		Codec:    app.codec,
		Verifier: app.firebase,
	}
	app.accountService = &service.AccountService{
		Store:  app.db,
		Claims: app.firebase,
	}
	app.sessionInfoService = &service.SessionInfoService{
		Codec:    app.codec,
		Ledger:   app.db,
		Verifier: app.firebase,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.LedgerRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.firebase,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.RefreshService = app.refreshService
	router.AccountService = app.accountService
	router.SessionInfoService = app.sessionInfoService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
