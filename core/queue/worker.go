package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/logger"
)

// WorkerRepository is the storage side of task processing.
type WorkerRepository interface {
	// ClaimTask locks the highest-priority due task from queues or returns ErrNoTaskToClaim.
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
	// FailTask records errorMsg, increments the retry count and reschedules
	// the task by the storage backoff policy, or marks it failed when the
	// retry budget is spent.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
	MoveToDLQ(ctx context.Context, taskID uuid.UUID) error
	ExtendLock(ctx context.Context, taskID uuid.UUID, duration time.Duration) error
}

// WorkerStats is a snapshot of worker counters.
type WorkerStats struct {
	TasksProcessed int64
	TasksFailed    int64
	ActiveTasks    int32
	IsRunning      bool
}

// Worker claims tasks from storage and dispatches them to handlers.
type Worker struct {
	repo     WorkerRepository
	id       uuid.UUID
	queues   []string
	interval time.Duration
	lockTTL  time.Duration
	slots    chan struct{}
	logger   *slog.Logger
	life     *lifecycle

	hmu      sync.RWMutex
	handlers map[string]Handler

	processed atomic.Int64
	failed    atomic.Int64
	active    atomic.Int32
}

// NewWorker creates a worker. It defaults to the default queue, a 5s poll
// interval, a 5m lock and a single concurrent task.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	o := workerOptions{
		queues:             []string{DefaultQueueName},
		pollInterval:       5 * time.Second,
		lockTimeout:        5 * time.Minute,
		shutdownTimeout:    30 * time.Second,
		maxConcurrentTasks: 1,
		logger:             logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.With(logger.Component("queue.worker"))
	return &Worker{
		repo:     repo,
		id:       uuid.New(),
		queues:   slices.Clone(o.queues),
		interval: o.pollInterval,
		lockTTL:  o.lockTimeout,
		slots:    make(chan struct{}, o.maxConcurrentTasks),
		logger:   log,
		life:     &lifecycle{shutdownTimeout: o.shutdownTimeout, logger: log},
		handlers: make(map[string]Handler),
	}, nil
}

// NewWorkerFromConfig applies cfg before opts.
func NewWorkerFromConfig(cfg Config, repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	return NewWorker(repo, append([]WorkerOption{
		WithPollInterval(cfg.PollInterval),
		WithLockTimeout(cfg.LockTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
		WithMaxConcurrentTasks(cfg.MaxConcurrentTasks),
		WithQueues(cfg.Queues...),
	}, opts...)...)
}

// RegisterHandler adds h, replacing any handler with the same name. Nil is ignored.
func (w *Worker) RegisterHandler(h Handler) {
	if h == nil {
		return
	}
	w.hmu.Lock()
	w.handlers[h.Name()] = h
	w.hmu.Unlock()
}

// RegisterHandlers adds every handler in hs.
func (w *Worker) RegisterHandlers(hs ...Handler) {
	for _, h := range hs {
		w.RegisterHandler(h)
	}
}

// HandlerCount returns the number of registered handlers.
func (w *Worker) HandlerCount() int {
	w.hmu.RLock()
	defer w.hmu.RUnlock()
	return len(w.handlers)
}

// Queues returns a copy of the queues the worker claims from.
func (w *Worker) Queues() []string {
	return slices.Clone(w.queues)
}

// ID identifies this worker in task locks.
func (w *Worker) ID() uuid.UUID {
	return w.id
}

// Start polls for tasks until ctx is cancelled or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	if w.HandlerCount() == 0 {
		return ErrNoHandlers
	}

	runCtx, err := w.life.begin(ctx)
	if err != nil {
		return err
	}

	w.logger.InfoContext(runCtx, "worker started",
		slog.String("worker_id", w.id.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.slots)))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case <-ticker.C:
			w.dispatch(runCtx)
		}
	}
}

// dispatch claims due tasks while free slots remain.
func (w *Worker) dispatch(ctx context.Context) {
	for ctx.Err() == nil {
		select {
		case w.slots <- struct{}{}:
		default:
			w.logger.DebugContext(ctx, "all worker slots busy")
			return
		}

		task, err := w.repo.ClaimTask(ctx, w.id, w.queues, w.lockTTL)
		if err != nil || task == nil {
			<-w.slots
			if err != nil && !errors.Is(err, ErrNoTaskToClaim) && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "failed to claim task", logger.Error(err))
			}
			return
		}

		done, ok := w.life.track()
		if !ok {
			<-w.slots
			return
		}

		go func() {
			defer done()
			defer func() { <-w.slots }()
			if err := w.process(task); err != nil && !errors.Is(err, ErrHandlerNotFound) {
				w.logger.Error("failed to settle task", logger.TaskID(task.ID.String()), logger.Error(err))
			}
		}()
	}
}

// process runs one claimed task. Settlement uses a background context so
// that a stopping worker still records the outcome of running handlers.
func (w *Worker) process(task *Task) error {
	start := time.Now()
	w.active.Add(1)
	defer w.active.Add(-1)

	log := w.logger.With(
		logger.TaskID(task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.String("queue", task.Queue),
	)

	w.hmu.RLock()
	h, ok := w.handlers[task.TaskName]
	w.hmu.RUnlock()
	if !ok {
		return w.deadLetterUnhandled(task, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.lockTTL)
	defer cancel()

	if runErr := w.invoke(ctx, h, task); runErr != nil {
		return w.fail(task, runErr, time.Since(start), log)
	}

	if err := w.repo.CompleteTask(context.Background(), task.ID); err != nil {
		return fmt.Errorf("complete task %s: %w", task.ID, err)
	}
	w.processed.Add(1)
	log.Info("task completed", logger.Elapsed(start))
	return nil
}

// invoke calls the handler and converts a panic into an error.
func (w *Worker) invoke(ctx context.Context, h Handler, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in handler %s: %v", task.TaskName, r)
		}
	}()
	return h.Handle(ContextWithTask(ctx, task), task.Payload)
}

// deadLetterUnhandled sends a task with no handler straight to the DLQ.
// Retrying cannot help until a handler is deployed.
func (w *Worker) deadLetterUnhandled(task *Task, log *slog.Logger) error {
	w.failed.Add(1)
	log.Error("no handler registered for task")

	ctx := context.Background()
	if err := w.repo.FailTask(ctx, task.ID, ErrHandlerNotFound.Error()+": "+task.TaskName); err != nil {
		return fmt.Errorf("fail task %s: %w", task.ID, err)
	}
	if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
		return fmt.Errorf("dead-letter task %s: %w", task.ID, err)
	}
	return ErrHandlerNotFound
}

// fail records a handler error and dead-letters the task once its retry
// budget is spent.
func (w *Worker) fail(task *Task, runErr error, elapsed time.Duration, log *slog.Logger) error {
	w.failed.Add(1)
	log.Error("task failed",
		logger.Error(runErr),
		logger.Attempt(int(task.RetryCount)+1),
		slog.Int("max_retries", int(task.MaxRetries)),
		logger.Duration(elapsed))

	ctx := context.Background()
	if err := w.repo.FailTask(ctx, task.ID, runErr.Error()); err != nil {
		return fmt.Errorf("fail task %s: %w", task.ID, err)
	}
	if !task.Exhausted() {
		return nil
	}
	if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
		return fmt.Errorf("dead-letter task %s: %w", task.ID, err)
	}
	log.Warn("task moved to dead letter queue")
	return nil
}

// ExtendLock keeps a long-running task locked for another d.
func (w *Worker) ExtendLock(ctx context.Context, taskID uuid.UUID, d time.Duration) error {
	return w.repo.ExtendLock(ctx, taskID, d)
}

// Stop cancels polling and waits for running handlers up to the shutdown timeout.
func (w *Worker) Stop() error {
	return w.life.stop("worker")
}

// Run returns an errgroup function bound to ctx.
func (w *Worker) Run(ctx context.Context) func() error {
	return runFunc(ctx, w.Start, w.Stop)
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		TasksProcessed: w.processed.Load(),
		TasksFailed:    w.failed.Load(),
		ActiveTasks:    w.active.Load(),
		IsRunning:      w.life.running(),
	}
}

// Healthcheck fails when the worker is stopped or every slot is busy.
func (w *Worker) Healthcheck(context.Context) error {
	s := w.Stats()
	if !s.IsRunning {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerNotRunning)
	}
	if limit := int32(cap(w.slots)); s.ActiveTasks >= limit {
		return errors.Join(ErrHealthcheckFailed, ErrWorkerOverloaded,
			fmt.Errorf("%d/%d slots busy", s.ActiveTasks, limit))
	}
	return nil
}
