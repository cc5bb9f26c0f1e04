// Package server wires configuration, storage, services and transports into
// the backend process and runs it until a signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/clipboardhistoryio/companion/internal/server/config"
	"github.com/clipboardhistoryio/companion/internal/server/mailer"
	"github.com/clipboardhistoryio/companion/internal/server/ratelimit"
	"github.com/clipboardhistoryio/companion/internal/server/repositories/repomanager"
	"github.com/clipboardhistoryio/companion/internal/server/services"
	"github.com/clipboardhistoryio/companion/internal/server/webhook"
	"github.com/redis/go-redis/v9"

	gs "github.com/clipboardhistoryio/companion/internal/server/grpc"
)

const janitorInterval = 10 * time.Minute

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	sync   func() error

	db    *sql.DB
	redis *redis.Client

	authService         *services.AuthService
	subscriptionService *services.SubscriptionService
	entryService        *services.EntryService
	janitor             *services.Janitor
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	zl, err := logging.NewZap(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}
	logger := logging.NewZapLogger(zl)

	db, err := openDB(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	limiter, rdb := newLimiter(cfg)

	app := &App{
		config: cfg,
		logger: logger,
		sync:   logger.Sync,
		db:     db,
		redis:  rdb,

		authService:         services.NewAuthService(db, rm, newMailer(cfg, logger), limiter, cfg, logger),
		subscriptionService: services.NewSubscriptionService(db, rm, logger),
		entryService:        services.NewEntryService(db, rm),
		janitor:             services.NewJanitor(db, rm, logger),
	}
	return app, nil
}

// newMailer uses Mailgun when credentials are configured and falls back to
// logging the codes otherwise.
func newMailer(cfg *config.Config, logger logging.Logger) mailer.Mailer {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		return mailer.NewLogMailer(logger)
	}
	return mailer.NewMailgunMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailSender, cfg.MagicCodeTTL, logger)
}

// newLimiter returns a Redis-backed limiter when RedisAddr is set. The
// returned client is nil otherwise.
func newLimiter(cfg *config.Config) (ratelimit.Limiter, *redis.Client) {
	if cfg.RedisAddr == "" {
		return ratelimit.Noop{}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return ratelimit.NewRedisLimiter(rdb, "", cfg.MagicCodeSendLimit, cfg.MagicCodeSendWindow), rdb
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.authService, app.subscriptionService, app.entryService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	h := webhook.NewHandler(app.subscriptionService, app.config.StripeWebhookSecret, app.logger)
	s := webhook.NewServer(app.config.EndpointAddrHTTP, webhook.NewRouter(h, app.logger), app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one of
// the servers fails, then releases resources.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx, janitorInterval)
	}()

	wg.Wait()
	app.close()
}

func (app *App) close() {
	ctx := context.Background()
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.sync()
}
