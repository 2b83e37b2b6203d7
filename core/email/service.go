package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"

	"github.com/onedesigner/onedesigner/core/email/templates"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/pkg/ratelimiter"
)

// TaskName is the queue task name of queued emails.
const TaskName = "email.send"

// Task is the queued form of an email.
type Task struct {
	Params SendEmailParams `json:"params"`
}

// Enqueuer is the part of the task queue the service uses.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload any, opts ...queue.EnqueueOption) (*queue.Task, error)
}

// Stats counts deliveries since the service was created.
type Stats struct {
	Sent        int64 `json:"sent"`
	Failed      int64 `json:"failed"`
	Retried     int64 `json:"retried"`
	Queued      int64 `json:"queued"`
	RateLimited int64 `json:"rate_limited"`
}

// Service sends email through an EmailSender with a shared rate limit,
// retries with exponential backoff and optional queueing.
type Service struct {
	sender   EmailSender
	provider string
	limiter  ratelimiter.RateLimiter
	enqueuer Enqueuer
	logger   *slog.Logger

	maxAttempts  int
	backoff      queue.Backoff
	maxRateWait  time.Duration
	queueName    string
	queueRetries int8

	sent, failed, retried, queued, limited atomic.Int64
}

// Option configures a Service.
type Option func(*Service)

// WithProvider names the provider for rate limit keys and logs.
func WithProvider(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

// WithRateLimiter replaces the in-process limiter, e.g. with a Redis-backed
// bucket shared by every instance.
func WithRateLimiter(l ratelimiter.RateLimiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithEnqueuer enables Queue and QueueTemplate.
func WithEnqueuer(e Enqueuer) Option {
	return func(s *Service) {
		s.enqueuer = e
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRetry sets the attempt budget of Send and the backoff between attempts.
func WithRetry(maxAttempts int, base, maxDelay time.Duration) Option {
	return func(s *Service) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if base > 0 && maxDelay >= base {
			s.backoff = queue.ExponentialBackoff(base, maxDelay)
		}
	}
}

// WithMaxRateWait bounds how long one attempt waits for a rate limit token.
func WithMaxRateWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.maxRateWait = d
		}
	}
}

// WithQueue sets the queue name and retry budget of queued emails.
func WithQueue(name string, maxRetries int8) Option {
	return func(s *Service) {
		if name != "" {
			s.queueName = name
		}
		if maxRetries >= 0 {
			s.queueRetries = maxRetries
		}
	}
}

// NewService wraps sender. Without WithRateLimiter it allows two emails
// per second per provider in process.
func NewService(sender EmailSender, opts ...Option) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("%w: sender is nil", ErrInvalidConfig)
	}

	def := DefaultConfig()
	s := &Service{
		sender:       sender,
		provider:     def.Provider,
		logger:       logger.NewNop(),
		maxAttempts:  def.MaxAttempts,
		backoff:      queue.ExponentialBackoff(def.BaseDelay, def.MaxDelay),
		maxRateWait:  def.MaxRateWait,
		queueName:    def.QueueName,
		queueRetries: def.QueueRetries,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limiter == nil {
		bucket, err := ratelimiter.NewBucket(
			ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)),
			ratelimiter.PerSecond(def.RatePerSecond),
		)
		if err != nil {
			return nil, err
		}
		s.limiter = bucket
	}
	s.logger = s.logger.With(logger.Component("email"), logger.Provider(s.provider))
	return s, nil
}

// NewServiceFromConfig applies cfg before opts. The default limiter follows
// cfg.RatePerSecond.
func NewServiceFromConfig(cfg Config, sender EmailSender, opts ...Option) (*Service, error) {
	base := []Option{
		WithProvider(cfg.Provider),
		WithRetry(cfg.MaxAttempts, cfg.BaseDelay, cfg.MaxDelay),
		WithMaxRateWait(cfg.MaxRateWait),
		WithQueue(cfg.QueueName, cfg.QueueRetries),
	}
	if cfg.RatePerSecond > 0 {
		bucket, err := ratelimiter.NewBucket(
			ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)),
			ratelimiter.PerSecond(cfg.RatePerSecond),
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		base = append(base, WithRateLimiter(bucket))
	}
	return NewService(sender, append(base, opts...)...)
}

// Send delivers params now. Transient failures are retried up to the
// attempt budget; invalid params and context cancellation are not.
func (s *Service) Send(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		s.failed.Add(1)
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 {
			s.retried.Add(1)
			if err := sleep(ctx, s.backoff(attempt-1)); err != nil {
				s.failed.Add(1)
				return errors.Join(ErrFailedToSendEmail, err)
			}
		}

		lastErr = s.deliver(ctx, params, attempt)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrInvalidParams) || ctx.Err() != nil {
			break
		}
	}

	s.failed.Add(1)
	return lastErr
}

// deliver makes one rate-limited attempt.
func (s *Service) deliver(ctx context.Context, params SendEmailParams, attempt int) error {
	if err := s.waitForToken(ctx); err != nil {
		return err
	}

	start := time.Now()
	err := s.sender.SendEmail(ctx, params)
	if err != nil {
		s.logger.WarnContext(ctx, "email delivery failed",
			logger.Email(params.SendTo),
			slog.String("tag", params.Tag),
			logger.Attempt(attempt),
			logger.Error(err))
		return err
	}

	s.sent.Add(1)
	s.logger.InfoContext(ctx, "email sent",
		logger.Email(params.SendTo),
		slog.String("tag", params.Tag),
		logger.Attempt(attempt),
		logger.Elapsed(start))
	return nil
}

// waitForToken blocks until the provider budget has room, at most maxRateWait.
func (s *Service) waitForToken(ctx context.Context) error {
	key := "email:" + s.provider

	res, err := s.limiter.Allow(ctx, key)
	if err != nil {
		return errors.Join(ErrRateLimited, err)
	}
	if res.Allowed() {
		return nil
	}

	s.limited.Add(1)
	s.logger.DebugContext(ctx, "email rate limited, waiting",
		slog.Duration("retry_after", res.RetryAfter()))

	waitCtx, cancel := context.WithTimeout(ctx, s.maxRateWait)
	defer cancel()
	if err := ratelimiter.Wait(waitCtx, s.limiter, key, 1); err != nil {
		return errors.Join(ErrRateLimited, err)
	}
	return nil
}

// Queue validates params and stores them as a task on the email queue.
// OTP and auth emails get high priority.
func (s *Service) Queue(ctx context.Context, params SendEmailParams, opts ...queue.EnqueueOption) error {
	if s.enqueuer == nil {
		return ErrQueueUnavailable
	}
	if err := params.Validate(); err != nil {
		return err
	}

	base := []queue.EnqueueOption{
		queue.WithQueue(s.queueName),
		queue.WithTaskName(TaskName),
		queue.WithPriority(priorityFor(params.Tag)),
		queue.WithMaxRetries(s.queueRetries),
	}
	if _, err := s.enqueuer.Enqueue(ctx, Task{Params: params}, append(base, opts...)...); err != nil {
		return errors.Join(ErrQueueUnavailable, err)
	}
	s.queued.Add(1)
	return nil
}

// Handler processes queued emails with one rate-limited attempt per task.
// Failed tasks are retried by the queue backoff policy. As with Send,
// Stats.Retried counts attempts that will be retried and Stats.Failed
// counts emails given up on.
func (s *Service) Handler() queue.Handler {
	return queue.NewNamedTaskHandler(TaskName, func(ctx context.Context, t Task) error {
		if err := t.Params.Validate(); err != nil {
			// retrying cannot fix the payload
			s.failed.Add(1)
			s.logger.ErrorContext(ctx, "dropping invalid queued email", logger.Error(err))
			return nil
		}

		attempt, last := 1, true
		if task, ok := queue.TaskFromContext(ctx); ok {
			attempt, last = int(task.RetryCount)+1, task.Exhausted()
		}
		if err := s.deliver(ctx, t.Params, attempt); err != nil {
			if last {
				s.failed.Add(1)
			} else {
				s.retried.Add(1)
			}
			return err
		}
		return nil
	})
}

// SendTemplate renders component into params.BodyHTML and sends it.
func (s *Service) SendTemplate(ctx context.Context, params SendEmailParams, component templ.Component) error {
	html, err := templates.Render(ctx, component)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	params.BodyHTML = html
	return s.Send(ctx, params)
}

// QueueTemplate renders component into params.BodyHTML and queues it.
func (s *Service) QueueTemplate(ctx context.Context, params SendEmailParams, component templ.Component, opts ...queue.EnqueueOption) error {
	html, err := templates.Render(ctx, component)
	if err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	params.BodyHTML = html
	return s.Queue(ctx, params, opts...)
}

// Stats returns a snapshot of the delivery counters.
func (s *Service) Stats() Stats {
	return Stats{
		Sent:        s.sent.Load(),
		Failed:      s.failed.Load(),
		Retried:     s.retried.Load(),
		Queued:      s.queued.Load(),
		RateLimited: s.limited.Load(),
	}
}

var urgentTags = []string{"otp", "auth", "magic_link", "verification", "password_reset"}

func priorityFor(tag string) queue.Priority {
	if slices.Contains(urgentTags, tag) {
		return queue.PriorityHigh
	}
	return queue.PriorityMedium
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
