package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/credkit/internal/credential/http"
	"github.com/aussiebroadwan/credkit/internal/credential/service"
	"github.com/aussiebroadwan/credkit/internal/credential/store"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/memory"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/redis"
	"github.com/aussiebroadwan/credkit/internal/credential/store/drivers/sqlite"
	"github.com/aussiebroadwan/credkit/pkg/jwtx"
	"github.com/aussiebroadwan/credkit/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the credential service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	cache    store.Cache
	signer   jwtx.Signer
	keys     *jwtx.KeySet
	verifier jwtx.Verifier
	pepper   []byte

	// Services
	tokenService        *service.TokenService
	apiKeyService       *service.APIKeyService
	csrfService         *service.CSRFService
	secondFactorService *service.SecondFactorService
	rateGuardService    *service.RateGuardService
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
			Service: "credkit",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	signer, keys, verifier, err := InitSigningKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.signer = signer
	app.keys = keys
	app.verifier = verifier

	app.loadPepper()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("credential service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down credential service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close the cache store
	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing cache store", "error", err)
		return err
	}

	app.logger.Info("credential service stopped")
	return nil
}

// initCache opens the configured cache backend. The sqlite driver also
// applies migrations.
func (app *Application) initCache() error {
	switch app.cfg.CacheDriver {
	case "redis":
		if app.cfg.RedisAddr == "" {
			return fmt.Errorf("CREDKIT_REDIS_ADDR is required for the redis cache driver")
		}
		app.cache = redis.NewStore(redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		app.logger.Info("redis cache configured", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)

	case "memory":
		app.cache = memory.NewStore()
		app.logger.Warn("in-memory cache configured, state will not survive a restart")

	case "sqlite":
		fallthrough
	default:
		host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(host)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.cache = db

		app.logger.Info("database migrations applied successfully")
	}

	return nil
}

// loadPepper reads the API key fingerprint pepper. A missing file is
// tolerated so dev deployments work out of the box.
func (app *Application) loadPepper() {
	pepper, err := os.ReadFile(app.cfg.PepperFile)
	if err != nil {
		app.logger.Warn("pepper file not readable, api key fingerprints are unpeppered",
			"path", app.cfg.PepperFile,
		)
		return
	}
	app.pepper = bytes.TrimSpace(pepper)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.rateGuardService = &service.RateGuardService{Cache: app.cache}

	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Verifier:   app.verifier,
		Ledger:     &service.RevocationLedger{Cache: app.cache},
		Issuer:     app.cfg.Issuer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.apiKeyService = &service.APIKeyService{
		Cache:  app.cache,
		Pepper: app.pepper,
	}

	app.csrfService = &service.CSRFService{
		Cache: app.cache,
		TTL:   app.cfg.CSRFTTL,
	}

	app.secondFactorService = &service.SecondFactorService{
		Guard:         app.rateGuardService,
		Secrets:       app.cache,
		Skew:          uint(app.cfg.SecondFactorSkew),
		MaxAttempts:   int64(app.cfg.SecondFactorAttempts),
		AttemptWindow: app.cfg.SecondFactorWindow,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.cache,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys,
		app.cfg.Issuer,
		BuildVersion,
		app.cache,
		app.logger,
	)

	// Wire services to router
	router.TokenService = app.tokenService
	router.APIKeyService = app.apiKeyService
	router.CSRFService = app.csrfService
	router.SecondFactorService = app.secondFactorService
	router.BootstrapToken = app.cfg.BootstrapToken
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
