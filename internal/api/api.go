package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/binder"
	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/health"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/core/response"
	"github.com/onedesigner/onedesigner/core/router"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/payments"
	"github.com/onedesigner/onedesigner/middleware"
	"github.com/onedesigner/onedesigner/pkg/ratelimiter"
)

// Marketplace is the domain service behind the API.
type Marketplace interface {
	RegisterClient(ctx context.Context, in marketplace.RegisterClientInput) (*marketplace.Client, error)
	ApplyDesigner(ctx context.Context, in marketplace.DesignerApplication) (*marketplace.Designer, error)
	ListDesigners(ctx context.Context, status marketplace.DesignerStatus) ([]marketplace.Designer, error)
	ApproveDesigner(ctx context.Context, id uuid.UUID) (*marketplace.Designer, error)
	RejectDesigner(ctx context.Context, id uuid.UUID, reason string) (*marketplace.Designer, error)
	Stats(ctx context.Context) (marketplace.Stats, error)
	SubmitBrief(ctx context.Context, clientID uuid.UUID, in marketplace.BriefInput) (*marketplace.Brief, error)
	FindMatches(ctx context.Context, clientID, briefID uuid.UUID) ([]marketplace.MatchView, error)
	BriefMatches(ctx context.Context, clientID, briefID uuid.UUID) ([]marketplace.MatchView, error)
	UnlockMatch(ctx context.Context, clientID, matchID uuid.UUID) (*marketplace.UnlockResult, error)
	SendProjectRequest(ctx context.Context, clientID, matchID uuid.UUID, message string) (*marketplace.ProjectRequest, error)
	RespondToProjectRequest(ctx context.Context, designerID, requestID uuid.UUID, approve bool, message string) (*marketplace.RespondResult, error)
	DesignerRequests(ctx context.Context, designerID uuid.UUID) ([]marketplace.DesignerRequestView, error)
	ClientDashboard(ctx context.Context, clientID uuid.UUID) (*marketplace.Dashboard, error)
}

// Webhook applies payment provider deliveries.
type Webhook interface {
	Handle(ctx context.Context, body []byte, signature string) (payments.Result, error)
	// MaxBodyBytes bounds the delivery body read before verification.
	MaxBodyBytes() int64
}

// LoginCodeSender emails one-time sign-in codes.
type LoginCodeSender interface {
	LoginCode(ctx context.Context, to, code string, ttl time.Duration) error
}

type Option func(*API)

func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRateLimiter overrides the limiter of public POST endpoints, e.g. with
// a Redis-backed bucket shared by all instances.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.limiter = l }
}

func WithWebhook(w Webhook) Option {
	return func(a *API) { a.webhook = w }
}

func WithEmailStats(fn func() email.Stats) Option {
	return func(a *API) { a.emailStats = fn }
}

func WithDeadLetters(fn func(context.Context) ([]queue.TasksDlq, error)) Option {
	return func(a *API) { a.deadLetters = fn }
}

func WithLoginCodes(s LoginCodeSender) Option {
	return func(a *API) { a.loginCodes = s }
}

func WithReadinessChecks(checks ...health.Check) Option {
	return func(a *API) { a.checks = append(a.checks, checks...) }
}

// API is the JSON HTTP surface of the marketplace.
type API struct {
	cfg    Config
	svc    Marketplace
	logger *slog.Logger
	bind   binder.Binder

	limiter     ratelimiter.RateLimiter
	webhook     Webhook
	emailStats  func() email.Stats
	deadLetters func(context.Context) ([]queue.TasksDlq, error)
	loginCodes  LoginCodeSender
	checks      []health.Check

	router router.Router[*router.Context]
}

// New builds the router. Without WithRateLimiter public POSTs are limited
// through an in-process bucket.
func New(cfg Config, svc Marketplace, opts ...Option) (*API, error) {
	if svc == nil {
		return nil, marketplace.ErrRepositoryNil
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = binder.DefaultMaxJSONSize
	}
	if cfg.PublicRateLimit <= 0 {
		cfg.PublicRateLimit = 20
	}
	if cfg.PublicRateWindow <= 0 {
		cfg.PublicRateWindow = time.Minute
	}

	a := &API{
		cfg:    cfg,
		svc:    svc,
		logger: logger.NewNop(),
		bind:   binder.JSONWithLimit(cfg.MaxBodyBytes),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.limiter == nil {
		l, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), PublicRateConfig(cfg))
		if err != nil {
			return nil, err
		}
		a.limiter = l
	}

	a.routes()
	return a, nil
}

// PublicRateConfig is the token bucket for public POST endpoints.
func PublicRateConfig(cfg Config) ratelimiter.Config {
	return ratelimiter.Config{
		Capacity:       cfg.PublicRateLimit,
		RefillRate:     cfg.PublicRateLimit,
		RefillInterval: cfg.PublicRateWindow,
	}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Routes lists registered routes.
func (a *API) Routes() []router.Route {
	return a.router.Routes()
}

func (a *API) routes() {
	r := router.New[*router.Context](
		router.WithLogger[*router.Context](a.logger),
		router.WithErrorHandler(response.NewJSONErrorHandler[*router.Context](a.logger)),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.ClientIP[*router.Context](),
			middleware.CORS[*router.Context](middleware.CORSConfig{
				AllowOrigins: a.cfg.CORSOrigins,
				AllowHeaders: []string{"Content-Type", HeaderClientID, HeaderDesignerID, HeaderAdminToken},
			}),
			middleware.Logging[*router.Context](a.logger),
		),
	)

	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](a.logger, a.checks...))

	limited := r.With(middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
		Limiter:    a.limiter,
		KeyPrefix:  "api:public:",
		SetHeaders: true,
	}))
	limited.Post("/api/clients", a.registerClient)
	limited.Post("/api/designers/apply", a.applyDesigner)
	limited.Post("/api/briefs", a.submitBrief)

	r.Get("/api/clients/me/dashboard", a.clientDashboard)
	r.Post("/api/briefs/{id}/matches", a.findMatches)
	r.Get("/api/briefs/{id}/matches", a.briefMatches)
	r.Post("/api/matches/{id}/unlock", a.unlockMatch)
	r.Post("/api/matches/{id}/request", a.sendProjectRequest)

	r.Get("/api/designers/me/requests", a.designerRequests)
	r.Post("/api/designers/me/requests/{id}/respond", a.respondToRequest)

	r.Route("/api/admin", func(r router.Router[*router.Context]) {
		r.Use(adminOnly(a.cfg.AdminToken))
		r.Get("/designers", a.listDesigners)
		r.Post("/designers/{id}/approve", a.approveDesigner)
		r.Post("/designers/{id}/reject", a.rejectDesigner)
		r.Get("/stats", a.stats)
		r.Get("/email/stats", a.emailStatsHandler)
		r.Get("/queue/dead-letters", a.deadLettersHandler)
	})

	if a.loginCodes != nil {
		r.With(adminOnly(a.cfg.AdminToken)).Post("/api/hooks/auth-email", a.authEmail)
	}
	if a.webhook != nil {
		r.Post("/api/webhooks/lemonsqueezy", a.lemonSqueezy)
	}

	a.router = r
}
