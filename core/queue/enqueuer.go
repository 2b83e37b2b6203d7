package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository persists new tasks.
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer turns payloads into pending tasks.
type Enqueuer struct {
	repo     EnqueuerRepository
	defaults enqueuerOptions
	now      func() time.Time
}

// NewEnqueuer creates an Enqueuer writing to repo.
func NewEnqueuer(repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	defaults := enqueuerOptions{
		defaultQueue:      DefaultQueueName,
		defaultPriority:   PriorityDefault,
		defaultMaxRetries: 3,
	}
	for _, opt := range opts {
		opt(&defaults)
	}

	return &Enqueuer{repo: repo, defaults: defaults, now: time.Now}, nil
}

// NewEnqueuerFromConfig applies cfg before opts.
func NewEnqueuerFromConfig(cfg Config, repo EnqueuerRepository, opts ...EnqueuerOption) (*Enqueuer, error) {
	return NewEnqueuer(repo, append([]EnqueuerOption{
		WithDefaultQueue(cfg.DefaultQueue),
		WithDefaultPriority(cfg.DefaultPriority),
		WithDefaultMaxRetries(cfg.DefaultMaxRetries),
	}, opts...)...)
}

// Enqueue stores payload as a pending one-time task and returns it.
func (e *Enqueuer) Enqueue(ctx context.Context, payload any, opts ...EnqueueOption) (*Task, error) {
	if payload == nil {
		return nil, ErrPayloadNil
	}

	o := enqueueOptions{
		queue:      e.defaults.defaultQueue,
		priority:   e.defaults.defaultPriority,
		maxRetries: e.defaults.defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.priority.Valid() {
		return nil, ErrInvalidPriority
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %T payload: %w", payload, err)
	}

	name := o.taskName
	if name == "" {
		name = TaskName(payload)
	}

	now := e.now()
	runAt := now.Add(o.delay)
	if o.scheduledAt != nil {
		runAt = *o.scheduledAt
	}

	task := &Task{
		ID:          uuid.New(),
		Queue:       o.queue,
		TaskType:    TaskTypeOneTime,
		TaskName:    name,
		Payload:     data,
		Status:      TaskStatusPending,
		Priority:    o.priority,
		MaxRetries:  o.maxRetries,
		ScheduledAt: runAt,
		CreatedAt:   now,
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue %q on %q: %w", task.TaskName, task.Queue, err)
	}
	return task, nil
}
