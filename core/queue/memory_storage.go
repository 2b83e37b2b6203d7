package queue

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/logger"
)

// MemoryStorageStats is a snapshot of MemoryStorage state.
type MemoryStorageStats struct {
	Tasks             int
	Pending           int
	DeadLetters       int
	ExpiredLocksFreed int64
	IsRunning         bool
}

// MemoryStorageOption configures a MemoryStorage.
type MemoryStorageOption func(*MemoryStorage)

// WithLockCheckInterval sets how often expired locks are released.
func WithLockCheckInterval(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d > 0 {
			ms.checkInterval = d
		}
	}
}

// WithMemoryStorageShutdownTimeout bounds Stop.
func WithMemoryStorageShutdownTimeout(d time.Duration) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if d > 0 {
			ms.life.shutdownTimeout = d
		}
	}
}

// WithMemoryStorageLogger sets the logger.
func WithMemoryStorageLogger(l *slog.Logger) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if l != nil {
			ms.logger = l.With(logger.Component("queue.memory"))
			ms.life.logger = ms.logger
		}
	}
}

// WithBackoff sets the retry policy applied by FailTask.
func WithBackoff(b Backoff) MemoryStorageOption {
	return func(ms *MemoryStorage) {
		if b != nil {
			ms.backoff = b
		}
	}
}

// MemoryStorage is a process-local Storage for development and tests.
// Start runs a loop that returns tasks with expired locks to pending.
type MemoryStorage struct {
	mu      sync.RWMutex
	tasks   map[uuid.UUID]*Task
	pending map[uuid.UUID]struct{}
	dlq     []*TasksDlq

	backoff       Backoff
	checkInterval time.Duration
	logger        *slog.Logger
	life          *lifecycle

	expiredFreed atomic.Int64
}

// NewMemoryStorage creates an empty storage using DefaultBackoff.
func NewMemoryStorage(opts ...MemoryStorageOption) *MemoryStorage {
	nop := logger.NewNop()
	ms := &MemoryStorage{
		tasks:         make(map[uuid.UUID]*Task),
		pending:       make(map[uuid.UUID]struct{}),
		backoff:       DefaultBackoff,
		checkInterval: time.Second,
		logger:        nop,
		life:          &lifecycle{shutdownTimeout: 30 * time.Second, logger: nop},
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// CreateTask stores a copy of task.
func (ms *MemoryStorage) CreateTask(_ context.Context, task *Task) error {
	if task == nil {
		return ErrPayloadNil
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTaskExists, task.ID)
	}
	t := *task
	ms.tasks[t.ID] = &t
	if t.Status == TaskStatusPending {
		ms.pending[t.ID] = struct{}{}
	}
	return nil
}

// ClaimTask locks the highest-priority due pending task in queues. Ties go
// to the earliest ScheduledAt.
func (ms *MemoryStorage) ClaimTask(_ context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	var best *Task
	for id := range ms.pending {
		t := ms.tasks[id]
		if !slices.Contains(queues, t.Queue) || t.ScheduledAt.After(now) {
			continue
		}
		if best == nil || t.Priority > best.Priority ||
			(t.Priority == best.Priority && t.ScheduledAt.Before(best.ScheduledAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, ErrNoTaskToClaim
	}

	until := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedUntil = &until
	best.LockedBy = &workerID
	delete(ms.pending, best.ID)

	claimed := *best
	return &claimed, nil
}

// CompleteTask marks a processing task completed.
func (ms *MemoryStorage) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, err := ms.processing(taskID)
	if err != nil {
		return err
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.ProcessedAt = &now
	t.LockedUntil, t.LockedBy = nil, nil
	return nil
}

// FailTask records a failure. While the retry budget lasts the task goes
// back to pending, delayed by the backoff policy; afterwards it is marked failed.
func (ms *MemoryStorage) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, err := ms.processing(taskID)
	if err != nil {
		return err
	}
	t.RetryCount++
	t.Error = &errorMsg
	t.LockedUntil, t.LockedBy = nil, nil

	if t.RetryCount >= t.MaxRetries {
		t.Status = TaskStatusFailed
		return nil
	}
	t.Status = TaskStatusPending
	t.ScheduledAt = time.Now().Add(ms.backoff(int(t.RetryCount)))
	ms.pending[t.ID] = struct{}{}
	return nil
}

// MoveToDLQ removes the task and appends a dead letter record.
func (ms *MemoryStorage) MoveToDLQ(_ context.Context, taskID uuid.UUID) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	ms.dlq = append(ms.dlq, newDeadLetter(t, time.Now()))
	delete(ms.pending, taskID)
	delete(ms.tasks, taskID)
	return nil
}

// ExtendLock pushes the lock of a processing task to now+d.
func (ms *MemoryStorage) ExtendLock(_ context.Context, taskID uuid.UUID, d time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, err := ms.processing(taskID)
	if err != nil {
		return err
	}
	until := time.Now().Add(d)
	t.LockedUntil = &until
	return nil
}

// GetPendingTaskByName returns a pending task named taskName, or nil.
func (ms *MemoryStorage) GetPendingTaskByName(_ context.Context, taskName string) (*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	for id := range ms.pending {
		if t := ms.tasks[id]; t.TaskName == taskName {
			found := *t
			return &found, nil
		}
	}
	return nil, nil
}

// GetTask returns a copy of a stored task.
func (ms *MemoryStorage) GetTask(_ context.Context, taskID uuid.UUID) (*Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	found := *t
	return &found, nil
}

// ListDLQ returns dead letters, oldest first.
func (ms *MemoryStorage) ListDLQ(_ context.Context) ([]TasksDlq, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]TasksDlq, len(ms.dlq))
	for i, e := range ms.dlq {
		out[i] = *e
	}
	return out, nil
}

func (ms *MemoryStorage) processing(taskID uuid.UUID) (*Task, error) {
	t, ok := ms.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if t.Status != TaskStatusProcessing {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotProcessing, taskID)
	}
	return t, nil
}

// Start releases expired locks every check interval until ctx is cancelled or Stop is called.
func (ms *MemoryStorage) Start(ctx context.Context) error {
	runCtx, err := ms.life.begin(ctx)
	if err != nil {
		return err
	}

	ms.logger.InfoContext(runCtx, "lock expiration manager started",
		slog.Duration("interval", ms.checkInterval))

	ticker := time.NewTicker(ms.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		case <-ticker.C:
			if done, ok := ms.life.track(); ok {
				ms.releaseExpiredLocks()
				done()
			}
		}
	}
}

// Stop halts the lock expiration manager.
func (ms *MemoryStorage) Stop() error {
	return ms.life.stop("memory storage")
}

// Run returns an errgroup function bound to ctx.
func (ms *MemoryStorage) Run(ctx context.Context) func() error {
	return runFunc(ctx, ms.Start, ms.Stop)
}

// releaseExpiredLocks returns processing tasks with expired locks to
// pending so a crashed worker's task is retried.
func (ms *MemoryStorage) releaseExpiredLocks() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	freed := 0
	for id, t := range ms.tasks {
		if t.Status != TaskStatusProcessing || t.LockedUntil == nil || t.LockedUntil.After(now) {
			continue
		}
		t.Status = TaskStatusPending
		t.LockedUntil, t.LockedBy = nil, nil
		ms.pending[id] = struct{}{}
		freed++
	}
	if freed > 0 {
		ms.expiredFreed.Add(int64(freed))
		ms.logger.Warn("released expired task locks", logger.Count("released", freed))
	}
}

// Stats returns a snapshot of the storage.
func (ms *MemoryStorage) Stats() MemoryStorageStats {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return MemoryStorageStats{
		Tasks:             len(ms.tasks),
		Pending:           len(ms.pending),
		DeadLetters:       len(ms.dlq),
		ExpiredLocksFreed: ms.expiredFreed.Load(),
		IsRunning:         ms.life.running(),
	}
}

// Healthcheck fails when the lock expiration manager is not running.
func (ms *MemoryStorage) Healthcheck(context.Context) error {
	if !ms.life.running() {
		return ErrStorageNotRunning
	}
	return nil
}
