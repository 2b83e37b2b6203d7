package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/health"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/core/server"
	"github.com/onedesigner/onedesigner/integration/database/pg"
	"github.com/onedesigner/onedesigner/integration/database/redis"
	"github.com/onedesigner/onedesigner/internal/api"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/marketplace/pgrepo"
	"github.com/onedesigner/onedesigner/internal/matching"
	"github.com/onedesigner/onedesigner/internal/notify"
	"github.com/onedesigner/onedesigner/internal/payments"
	"github.com/onedesigner/onedesigner/internal/taskstore"
	"github.com/onedesigner/onedesigner/middleware"
	"github.com/onedesigner/onedesigner/pkg/ratelimiter"
)

// Periodic task names.
const (
	TaskExpireRequests = "expire_project_requests"
	TaskPurgeCompleted = "purge_completed_tasks"
)

// taskStorage is the queue storage plus dead letter access, satisfied by
// both the in-memory and the Postgres stores.
type taskStorage interface {
	queue.Storage
	ListDLQ(ctx context.Context) ([]queue.TasksDlq, error)
	Healthcheck(ctx context.Context) error
}

// App owns every long-lived component of the backend.
type App struct {
	cfg Config
	log *slog.Logger

	pool  *pgxpool.Pool
	redis *goredis.Client

	rateStore   ratelimiter.Store
	storage     taskStorage
	queue       *queue.Service
	email       *email.Service
	marketplace *marketplace.Service
	api         *api.API
	server      *server.Server

	sender email.EmailSender
	scorer matching.Scorer
}

// Option customizes App construction.
type Option func(*App) error

// WithLogger replaces the logger built from Config.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		a.log = l
		return nil
	}
}

// WithEmailSender replaces the provider selected by EMAIL_PROVIDER.
func WithEmailSender(s email.EmailSender) Option {
	return func(a *App) error {
		if s == nil {
			return errors.New("email sender cannot be nil")
		}
		a.sender = s
		return nil
	}
}

// WithScorer replaces the scorer selected by MATCHING_PROVIDER.
func WithScorer(s matching.Scorer) Option {
	return func(a *App) error {
		if s == nil {
			return errors.New("scorer cannot be nil")
		}
		a.scorer = s
		return nil
	}
}

// NewLogger builds the application logger for cfg.
func NewLogger(cfg Config) *slog.Logger {
	mode := logger.WithDevelopment(cfg.AppName)
	if cfg.Production() {
		mode = logger.WithProduction(cfg.AppName)
	}
	return logger.New(
		mode,
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithContextExtractors(middleware.RequestIDExtractor()),
	)
}

// New connects to the configured backing services and wires the
// marketplace, queue, email and HTTP layers together. Without DATABASE_URL
// the app runs on in-memory storage; without REDIS_URL rate limits are
// kept in process.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.log == nil {
		a.log = NewLogger(cfg)
	}

	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.cfg

	repo, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	if err := a.openRateStore(ctx); err != nil {
		return err
	}

	a.queue, err = queue.NewServiceFromConfig(cfg.Queue, a.storage, a.log)
	if err != nil {
		return fmt.Errorf("queue: %w", err)
	}

	if a.sender == nil {
		a.sender, err = newSender(cfg.Email)
		if err != nil {
			return fmt.Errorf("email sender: %w", err)
		}
	}
	emailLimiter, err := ratelimiter.NewBucket(a.rateStore, ratelimiter.PerSecond(max(cfg.Email.RatePerSecond, 1)))
	if err != nil {
		return fmt.Errorf("email rate limiter: %w", err)
	}
	a.email, err = email.NewServiceFromConfig(cfg.Email, a.sender,
		email.WithProvider(cfg.Email.Provider),
		email.WithRateLimiter(emailLimiter),
		email.WithEnqueuer(a.queue),
		email.WithLogger(a.log),
	)
	if err != nil {
		return fmt.Errorf("email: %w", err)
	}
	a.queue.RegisterHandler(a.email.Handler())

	notifier := notify.New(a.email, cfg.Notify, notify.WithLogger(a.log))

	if a.scorer == nil {
		a.scorer, err = matching.NewFromConfig(ctx, cfg.Matching, a.log)
		if err != nil {
			return fmt.Errorf("matching: %w", err)
		}
	}

	a.marketplace, err = marketplace.NewService(repo,
		marketplace.WithScorer(a.scorer),
		marketplace.WithMatchingConfig(cfg.Matching),
		marketplace.WithNotifier(notifier),
		marketplace.WithLogger(a.log),
		marketplace.WithRequestTTL(cfg.Marketplace.RequestTTL),
	)
	if err != nil {
		return fmt.Errorf("marketplace: %w", err)
	}

	if err := a.schedule(); err != nil {
		return err
	}

	apiOpts, err := a.apiOptions(notifier)
	if err != nil {
		return err
	}
	a.api, err = api.New(cfg.API, a.marketplace, apiOpts...)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}

	a.server, err = server.NewFromConfig(cfg.Server, server.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func (a *App) openStorage(ctx context.Context) (marketplace.Repository, error) {
	backoff := queue.WithBackoff(a.cfg.Queue.Backoff())
	if a.cfg.DB.ConnectionString == "" {
		a.log.WarnContext(ctx, "DATABASE_URL is not set, using in-memory storage")
		a.storage = queue.NewMemoryStorage(backoff, queue.WithMemoryStorageLogger(a.log))
		return marketplace.NewMemoryRepository(), nil
	}

	pool, err := pg.Connect(ctx, a.cfg.DB)
	if err != nil {
		return nil, err
	}
	a.pool = pool

	if a.cfg.DB.MigrateOnStart {
		if err := pgrepo.Migrate(ctx, pool, a.log); err != nil {
			return nil, err
		}
		if err := taskstore.Migrate(ctx, pool, a.log); err != nil {
			return nil, err
		}
	}

	a.storage = taskstore.New(pool, taskstore.WithBackoff(a.cfg.Queue.Backoff()))
	return pgrepo.New(pool), nil
}

func (a *App) openRateStore(ctx context.Context) error {
	if a.cfg.Redis.ConnectionURL == "" {
		a.rateStore = ratelimiter.NewMemoryStore(ratelimiter.WithMemoryStoreLogger(a.log))
		return nil
	}

	client, err := redis.Connect(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	a.redis = client

	store, err := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix(a.cfg.RateLimitKeyPrefix))
	if err != nil {
		return fmt.Errorf("rate limit store: %w", err)
	}
	a.rateStore = store
	return nil
}

// schedule registers the periodic maintenance tasks.
func (a *App) schedule() error {
	a.queue.RegisterHandler(queue.NewPeriodicTaskHandler(TaskExpireRequests, func(ctx context.Context) error {
		n, err := a.marketplace.ExpireProjectRequests(ctx, time.Now())
		if err != nil {
			return err
		}
		if n > 0 {
			a.log.InfoContext(ctx, "project requests expired", logger.Count("expired", n))
		}
		return nil
	}))
	if err := a.queue.AddScheduledTask(TaskExpireRequests, queue.Every(a.cfg.ExpireRequestsEvery)); err != nil {
		return fmt.Errorf("schedule %s: %w", TaskExpireRequests, err)
	}

	store, ok := a.storage.(*taskstore.Store)
	if !ok {
		return nil
	}
	a.queue.RegisterHandler(queue.NewPeriodicTaskHandler(TaskPurgeCompleted, func(ctx context.Context) error {
		n, err := store.DeleteCompleted(ctx, time.Now().Add(-a.cfg.TaskRetention))
		if err != nil {
			return err
		}
		a.log.InfoContext(ctx, "completed tasks purged", slog.Int64("deleted", n))
		return nil
	}))
	if err := a.queue.AddScheduledTask(TaskPurgeCompleted, queue.Daily(3, 0)); err != nil {
		return fmt.Errorf("schedule %s: %w", TaskPurgeCompleted, err)
	}
	return nil
}

func (a *App) apiOptions(notifier *notify.Notifier) ([]api.Option, error) {
	limiter, err := ratelimiter.NewBucket(a.rateStore, api.PublicRateConfig(a.cfg.API))
	if err != nil {
		return nil, fmt.Errorf("api rate limiter: %w", err)
	}

	checks := []health.Check{
		{Name: "storage", Fn: a.storage.Healthcheck},
		{Name: "queue", Fn: a.queue.Healthcheck},
	}
	if a.pool != nil {
		checks = append(checks, health.Check{Name: "postgres", Fn: pg.Healthcheck(a.pool)})
	}
	if a.redis != nil {
		checks = append(checks, health.Check{Name: "redis", Fn: redis.Healthcheck(a.redis)})
	}

	opts := []api.Option{
		api.WithLogger(a.log),
		api.WithRateLimiter(limiter),
		api.WithEmailStats(a.email.Stats),
		api.WithDeadLetters(a.storage.ListDLQ),
		api.WithLoginCodes(notifier),
		api.WithReadinessChecks(checks...),
	}

	if a.cfg.Payments.WebhookSecret != "" {
		hook, err := payments.NewWebhook(a.cfg.Payments, a.marketplace, payments.WithLogger(a.log))
		if err != nil {
			return nil, fmt.Errorf("payments: %w", err)
		}
		opts = append(opts, api.WithWebhook(hook))
	} else {
		a.log.Warn("LEMONSQUEEZY_WEBHOOK_SECRET is not set, payment webhook disabled")
	}
	return opts, nil
}

// Handler returns the HTTP API.
func (a *App) Handler() http.Handler {
	return a.api
}

// Marketplace returns the marketplace service.
func (a *App) Marketplace() *marketplace.Service {
	return a.marketplace
}

// Queue returns the background task service.
func (a *App) Queue() *queue.Service {
	return a.queue
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.log
}

// Run serves HTTP and processes background tasks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(a.server.Run(ctx, a.api))
	eg.Go(func() error { return a.queue.Run(ctx) })
	if ms, ok := a.rateStore.(*ratelimiter.MemoryStore); ok {
		eg.Go(ms.Run(ctx))
	}

	a.log.InfoContext(ctx, "onedesigner started", slog.String("addr", a.cfg.Server.Addr))
	return eg.Wait()
}

// Close releases database connections.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("failed to close redis", logger.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
