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

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/candor/internal/alerting"
	httpapi "github.com/aussiebroadwan/candor/internal/auth/http"
	"github.com/aussiebroadwan/candor/internal/auth/service"
	"github.com/aussiebroadwan/candor/internal/auth/store"
	"github.com/aussiebroadwan/candor/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/candor/pkg/httpx"
	"github.com/aussiebroadwan/candor/pkg/jwtx"
	"github.com/aussiebroadwan/candor/pkg/slogx"
	"github.com/aussiebroadwan/candor/pkg/webhook"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	redisLimiterPrefix = "candor:ratelimit:"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	redis   *redis.Client // nil without REDIS_URL
	limiter httpx.Limiter
	pubsub  *alerting.PubSub

	// Services
	authService         *service.AuthService
	sessionService      *service.SessionService
	housekeepingService *service.HousekeepingService
	publisher           *alerting.Publisher
	relay               *alerting.Relay

	relayCancel context.CancelFunc

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return NewWithLogger(cfg, slogx.New(slogx.Config{
		Service: "candor-auth",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

// NewWithLogger is New with a caller supplied logger.
func NewWithLogger(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg, logger: logger}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initRedis(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.closeAll()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if err := app.Start(); err != nil {
		return err
	}

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

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
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
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

// Start launches the background workers without serving HTTP.
func (app *Application) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	if err := app.relay.Start(ctx); err != nil {
		cancel()
		return fmt.Errorf("failed to start alert relay: %w", err)
	}
	app.relayCancel = cancel

	app.housekeepingService.Start()
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

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

	// Stop taking alerts, then give in-flight deliveries until the same
	// deadline before aborting them
	if app.relayCancel != nil {
		app.relayCancel()
		app.relay.Drain(ctx)
		app.housekeepingService.Stop()
	}

	return app.closeAll()
}

// closeAll releases the pubsub, Redis and the store in that order.
func (app *Application) closeAll() error {
	var errs []error
	if app.pubsub != nil {
		if err := app.pubsub.Close(); err != nil {
			app.logger.Error("error closing alert transport", "error", err)
			errs = append(errs, err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
			errs = append(errs, err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		app.logger.Info("auth service stopped")
	}
	return errors.Join(errs...)
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		app.db = nil
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initRedis connects to Redis when configured and picks the limiter.
func (app *Application) initRedis() error {
	if app.cfg.RedisURL != "" {
		opts, err := redis.ParseURL(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		app.redis = redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis: %w", err)
		}
		app.logger.Info("redis connected", "addr", opts.Addr)
	}

	if app.cfg.RateLimitBackend == "redis" {
		app.limiter = httpx.NewRedisLimiter(app.redis, redisLimiterPrefix)
	} else {
		app.limiter = httpx.NewFixedWindowLimiter()
	}
	app.logger.Info("rate limiter ready", "backend", app.cfg.RateLimitBackend)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	codec, err := jwtx.NewHMAC([]byte(app.cfg.JWTSecret), service.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}

	nonces := &service.NonceService{Store: app.db, TTL: app.cfg.NonceTTL}
	tokens := &service.TokenService{Codec: codec, TTL: app.cfg.SessionTTL}

	app.authService = &service.AuthService{
		Store:  app.db,
		Nonces: nonces,
		Tokens: tokens,
		Domain: app.cfg.Domain,
	}
	app.sessionService = &service.SessionService{Store: app.db, Tokens: tokens}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.Retention,
	)

	// A nil client selects the in-process transport
	var client redis.UniversalClient
	if app.redis != nil {
		client = app.redis
	}
	ps, err := alerting.NewPubSub(client, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize alert transport: %w", err)
	}
	app.pubsub = ps
	app.publisher = alerting.NewPublisher(ps.Publisher)

	dispatcher := webhook.NewDispatcher([]byte(app.cfg.WebhookSecret),
		webhook.WithLogger(app.logger),
		webhook.WithRetry(app.cfg.WebhookMaxAttempts, app.cfg.WebhookInitialBackoff),
		webhook.WithAttemptTimeout(app.cfg.WebhookTimeout),
		webhook.WithDebounce(app.cfg.WebhookDebounce, webhook.DefaultMaxDebounceEntries),
		webhook.WithRateLimit(app.cfg.WebhookRatePerSec, max(1, int(app.cfg.WebhookRatePerSec))),
	)
	app.relay = &alerting.Relay{
		Subscriber: ps.Subscriber,
		Deliverer:  dispatcher,
		Logger:     app.logger,
		Workers:    app.cfg.WebhookWorkers,
	}

	app.logger.Info("alert transport ready", "backend", ps.Backend)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.limiter,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.SessionService = app.sessionService
	router.Housekeeping = app.housekeepingService
	router.Alerts = app.publisher
	router.AlertsBackend = app.pubsub.Backend
	if app.redis != nil {
		router.Redis = httpapi.PingFunc(func(ctx context.Context) error {
			return app.redis.Ping(ctx).Err()
		})
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
