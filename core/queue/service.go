package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/onedesigner/onedesigner/core/logger"
)

// Service bundles an Enqueuer, a Worker and a Scheduler over one Storage.
type Service struct {
	storage   Storage
	enqueuer  *Enqueuer
	worker    *Worker
	scheduler *Scheduler
	logger    *slog.Logger
}

// NewService builds all components on storage with default settings, then
// applies opts.
func NewService(storage Storage, opts ...ServiceOption) (*Service, error) {
	if storage == nil {
		return nil, ErrRepositoryNil
	}

	s := &Service{storage: storage, logger: logger.NewNop()}

	var err error
	if s.enqueuer, err = NewEnqueuer(storage); err != nil {
		return nil, err
	}
	if s.worker, err = NewWorker(storage); err != nil {
		return nil, err
	}
	if s.scheduler, err = NewScheduler(storage); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("queue service option: %w", err)
		}
	}
	return s, nil
}

// NewServiceFromConfig builds a Service whose components follow cfg. The
// logger is shared by every component.
func NewServiceFromConfig(cfg Config, storage Storage, log *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if log == nil {
		log = logger.NewNop()
	}
	return NewService(storage, append([]ServiceOption{
		WithServiceLogger(log),
		WithWorkerOptions(
			WithPollInterval(cfg.PollInterval),
			WithLockTimeout(cfg.LockTimeout),
			WithShutdownTimeout(cfg.ShutdownTimeout),
			WithMaxConcurrentTasks(cfg.MaxConcurrentTasks),
			WithQueues(cfg.Queues...),
			WithWorkerLogger(log),
		),
		WithSchedulerOptions(
			WithCheckInterval(cfg.CheckInterval),
			WithSchedulerShutdownTimeout(cfg.ShutdownTimeout),
			WithSchedulerLogger(log),
		),
		WithEnqueuerOptions(
			WithDefaultQueue(cfg.DefaultQueue),
			WithDefaultPriority(cfg.DefaultPriority),
			WithDefaultMaxRetries(cfg.DefaultMaxRetries),
		),
	}, opts...)...)
}

// Run starts the worker and scheduler and blocks until ctx is cancelled or
// one of them fails. A component with nothing registered is skipped.
func (s *Service) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	if s.worker.HandlerCount() > 0 {
		s.logger.InfoContext(ctx, "starting queue worker", slog.Any("queues", s.worker.Queues()))
		eg.Go(s.worker.Run(ctx))
	} else {
		s.logger.InfoContext(ctx, "no task handlers registered, worker not started")
	}

	if n := len(s.scheduler.ListTasks()); n > 0 {
		s.logger.InfoContext(ctx, "starting queue scheduler", logger.Count("periodic_tasks", n))
		eg.Go(s.scheduler.Run(ctx))
	}

	if runner, ok := s.storage.(interface {
		Run(context.Context) func() error
	}); ok {
		eg.Go(runner.Run(ctx))
	}

	return eg.Wait()
}

// Enqueuer returns the enqueuer.
func (s *Service) Enqueuer() *Enqueuer { return s.enqueuer }

// Worker returns the worker.
func (s *Service) Worker() *Worker { return s.worker }

// Scheduler returns the scheduler.
func (s *Service) Scheduler() *Scheduler { return s.scheduler }

// Storage returns the backing storage.
func (s *Service) Storage() Storage { return s.storage }

// RegisterHandler registers h on the worker.
func (s *Service) RegisterHandler(h Handler) { s.worker.RegisterHandler(h) }

// RegisterHandlers registers hs on the worker.
func (s *Service) RegisterHandlers(hs ...Handler) { s.worker.RegisterHandlers(hs...) }

// AddScheduledTask registers a periodic task on the scheduler.
func (s *Service) AddScheduledTask(name string, schedule Schedule, opts ...SchedulerTaskOption) error {
	return s.scheduler.AddTask(name, schedule, opts...)
}

// Enqueue stores payload as a task.
func (s *Service) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (*Task, error) {
	return s.enqueuer.Enqueue(ctx, payload, opts...)
}

// EnqueueWithDelay stores payload to run after d.
func (s *Service) EnqueueWithDelay(ctx context.Context, payload any, d time.Duration, opts ...EnqueueOption) (*Task, error) {
	return s.enqueuer.Enqueue(ctx, payload, append([]EnqueueOption{WithDelay(d)}, opts...)...)
}

// EnqueueAt stores payload to run at t.
func (s *Service) EnqueueAt(ctx context.Context, payload any, t time.Time, opts ...EnqueueOption) (*Task, error) {
	return s.enqueuer.Enqueue(ctx, payload, append([]EnqueueOption{WithScheduledAt(t)}, opts...)...)
}

// Healthcheck reports the worker health.
func (s *Service) Healthcheck(ctx context.Context) error {
	return s.worker.Healthcheck(ctx)
}
