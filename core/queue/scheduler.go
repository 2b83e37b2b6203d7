package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/logger"
)

// SchedulerRepository is the storage side of periodic scheduling.
type SchedulerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
	// GetPendingTaskByName returns nil, nil when no pending task has that name.
	GetPendingTaskByName(ctx context.Context, taskName string) (*Task, error)
}

// SchedulerStats is a snapshot of scheduler counters.
type SchedulerStats struct {
	TasksScheduled int64
	RegisteredJobs int
	IsRunning      bool
}

type periodicTask struct {
	name       string
	schedule   Schedule
	queue      string
	priority   Priority
	maxRetries int8
	last       time.Time
}

// Scheduler keeps one pending instance of every registered periodic task in
// storage. A new instance is created only when none is pending, so
// restarts and concurrent schedulers do not duplicate work.
type Scheduler struct {
	repo     SchedulerRepository
	interval time.Duration
	logger   *slog.Logger
	life     *lifecycle
	now      func() time.Time

	mu    sync.Mutex
	tasks map[string]*periodicTask

	scheduled atomic.Int64
}

// NewScheduler creates a scheduler checking every 30s by default.
func NewScheduler(repo SchedulerRepository, opts ...SchedulerOption) (*Scheduler, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	o := schedulerOptions{
		checkInterval:   30 * time.Second,
		shutdownTimeout: 30 * time.Second,
		logger:          logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.With(logger.Component("queue.scheduler"))
	return &Scheduler{
		repo:     repo,
		interval: o.checkInterval,
		logger:   log,
		life:     &lifecycle{shutdownTimeout: o.shutdownTimeout, logger: log},
		now:      time.Now,
		tasks:    make(map[string]*periodicTask),
	}, nil
}

// NewSchedulerFromConfig applies cfg before opts.
func NewSchedulerFromConfig(cfg Config, repo SchedulerRepository, opts ...SchedulerOption) (*Scheduler, error) {
	return NewScheduler(repo, append([]SchedulerOption{
		WithCheckInterval(cfg.CheckInterval),
		WithSchedulerShutdownTimeout(cfg.ShutdownTimeout),
	}, opts...)...)
}

// AddTask registers a periodic task. The worker needs a handler created
// with NewPeriodicTaskHandler under the same name.
func (s *Scheduler) AddTask(name string, schedule Schedule, opts ...SchedulerTaskOption) error {
	p := &periodicTask{
		name:       name,
		schedule:   schedule,
		queue:      DefaultQueueName,
		priority:   PriorityDefault,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[name]; ok {
		return fmt.Errorf("%w: %s", ErrTaskAlreadyRegistered, name)
	}
	s.tasks[name] = p

	s.logger.Info("registered periodic task",
		slog.String("task_name", name),
		slog.String("schedule", schedule.String()))
	return nil
}

// RemoveTask unregisters a periodic task. Already stored instances remain.
func (s *Scheduler) RemoveTask(name string) {
	s.mu.Lock()
	delete(s.tasks, name)
	s.mu.Unlock()
}

// ListTasks returns registered task names in sorted order.
func (s *Scheduler) ListTasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.tasks))
}

// Start checks immediately and then every check interval until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.ListTasks()) == 0 {
		return ErrSchedulerNotConfigured
	}

	runCtx, err := s.life.begin(ctx)
	if err != nil {
		return err
	}

	s.logger.InfoContext(runCtx, "scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if done, ok := s.life.track(); ok {
			s.Check(context.Background())
			done()
		}
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case <-ticker.C:
		}
	}
}

// Check creates the next instance of every registered task that has none pending.
func (s *Scheduler) Check(ctx context.Context) {
	s.mu.Lock()
	due := slices.Collect(maps.Values(s.tasks))
	s.mu.Unlock()

	for _, p := range due {
		if err := s.ensurePending(ctx, p); err != nil {
			s.logger.ErrorContext(ctx, "failed to schedule periodic task",
				slog.String("task_name", p.name), logger.Error(err))
		}
	}
}

func (s *Scheduler) ensurePending(ctx context.Context, p *periodicTask) error {
	existing, err := s.repo.GetPendingTaskByName(ctx, p.name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing != nil {
		p.last = existing.ScheduledAt
		return nil
	}

	now := s.now()
	from := p.last
	if from.IsZero() {
		from = now
	}
	runAt := p.schedule.Next(from)
	if runAt.Before(now) {
		runAt = now
	}

	task := &Task{
		ID:          uuid.New(),
		Queue:       p.queue,
		TaskType:    TaskTypePeriodic,
		TaskName:    p.name,
		Status:      TaskStatusPending,
		Priority:    p.priority,
		MaxRetries:  p.maxRetries,
		ScheduledAt: runAt,
		CreatedAt:   now,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return err
	}
	p.last = runAt
	s.scheduled.Add(1)

	s.logger.DebugContext(ctx, "scheduled periodic task",
		slog.String("task_name", p.name), slog.Time("run_at", runAt))
	return nil
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() error {
	return s.life.stop("scheduler")
}

// Run returns an errgroup function bound to ctx.
func (s *Scheduler) Run(ctx context.Context) func() error {
	return runFunc(ctx, s.Start, s.Stop)
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		TasksScheduled: s.scheduled.Load(),
		RegisteredJobs: len(s.ListTasks()),
		IsRunning:      s.life.running(),
	}
}

// Healthcheck fails when the scheduler is stopped or has nothing registered.
func (s *Scheduler) Healthcheck(context.Context) error {
	st := s.Stats()
	if !st.IsRunning {
		return errors.Join(ErrHealthcheckFailed, ErrSchedulerNotRunning)
	}
	if st.RegisteredJobs == 0 {
		return errors.Join(ErrHealthcheckFailed, ErrNoTasksRegistered)
	}
	return nil
}
