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

	httpapi "github.com/aussiebroadwan/scribe/internal/scribe/http"
	"github.com/aussiebroadwan/scribe/internal/scribe/mail"
	"github.com/aussiebroadwan/scribe/internal/scribe/oauth"
	"github.com/aussiebroadwan/scribe/internal/scribe/service"
	"github.com/aussiebroadwan/scribe/internal/scribe/store"
	"github.com/aussiebroadwan/scribe/internal/scribe/store/drivers/sqlite"
	"github.com/aussiebroadwan/scribe/pkg/cryptox"
	"github.com/aussiebroadwan/scribe/pkg/jwtx"
	"github.com/aussiebroadwan/scribe/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags -X.
var BuildVersion = "v0.1.0"

// Application holds the identity service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	keys      map[jwtx.Purpose]*jwtx.KeyManager
	mail      mail.Sender
	providers oauth.Registry

	tokenService        *service.TokenService
	identityService     *service.IdentityService
	userService         *service.UserService
	onboardingService   *service.OnboardingService
	workspaceService    *service.WorkspaceService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(ctx context.Context, cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "scribe-identity",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	if err := app.initMail(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initProviders(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start(context.Background())

	app.logger.Info("scribe identity service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
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

// Shutdown drains in-flight requests, stops the background worker and closes
// the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down scribe identity service...")

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

	app.logger.Info("scribe identity service stopped")
	return nil
}

// Handler exposes the routed handler, for tests that drive the service
// in-process.
func (app *Application) Handler() http.Handler { return app.router }

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	if app.cfg.DatabaseFile == ":memory:" {
		dsn = ":memory:"
	}

	db, err := sqlite.NewStore(dsn)
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

func (app *Application) initMail() error {
	if !app.cfg.SMTP.Enabled() {
		app.logger.Warn("SMTP_HOST not set, mail will be logged instead of delivered")
		app.mail = mail.LogSender{}
		return nil
	}

	sender, err := mail.NewSMTPSender(app.cfg.SMTP.mail())
	if err != nil {
		return fmt.Errorf("failed to initialize smtp sender: %w", err)
	}
	app.mail = sender
	app.logger.Info("smtp delivery enabled", "host", app.cfg.SMTP.Host, "port", app.cfg.SMTP.Port)
	return nil
}

// initProviders discovers the configured identity providers. A provider
// without credentials is skipped and its routes answer 404.
func (app *Application) initProviders(ctx context.Context) error {
	app.providers = oauth.Registry{}

	discoverCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if cfg := app.cfg.Google.oauth(); cfg.Enabled() {
		p, err := oauth.NewGoogle(discoverCtx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize google sign in: %w", err)
		}
		app.providers[p.Name()] = p
		app.logger.Info("oauth provider enabled", "provider", p.Name())
	}

	if cfg := app.cfg.LinkedIn.oauth(); cfg.Enabled() {
		p, err := oauth.NewLinkedIn(discoverCtx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize linkedin sign in: %w", err)
		}
		app.providers[p.Name()] = p
		app.logger.Info("oauth provider enabled", "provider", p.Name())
	}

	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Keys:       app.keys,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.identityService = &service.IdentityService{
		Store:       app.db,
		Tokens:      app.tokenService,
		Mail:        app.mail,
		FrontendURL: app.cfg.FrontendURL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.onboardingService = &service.OnboardingService{Store: app.db}
	app.workspaceService = &service.WorkspaceService{
		Store:       app.db,
		Tokens:      app.tokenService,
		Mail:        app.mail,
		FrontendURL: app.cfg.FrontendURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.IdentityService = app.identityService
	router.UserService = app.userService
	router.OnboardingService = app.onboardingService
	router.WorkspaceService = app.workspaceService
	router.Providers = app.providers
	router.FrontendURL = app.cfg.FrontendURL
	router.RequireVerifiedEmail = app.cfg.RequireVerifiedEmail
	router.SecureCookies = app.cfg.SecureCookies()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
