package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Handler processes tasks whose TaskName equals Name.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// TaskHandlerFunc handles a decoded one-time task payload.
type TaskHandlerFunc[T any] func(ctx context.Context, payload T) error

// PeriodicTaskHandlerFunc handles a scheduler-generated task.
type PeriodicTaskHandlerFunc func(ctx context.Context) error

// NewTaskHandler registers fn under the name derived from T, which is the
// name Enqueue gives a payload of type T.
func NewTaskHandler[T any](fn TaskHandlerFunc[T]) Handler {
	var zero T
	return NewNamedTaskHandler(TaskName(zero), fn)
}

// NewNamedTaskHandler registers fn under an explicit name, to pair with
// WithTaskName on the enqueue side.
func NewNamedTaskHandler[T any](name string, fn TaskHandlerFunc[T]) Handler {
	return &typedHandler[T]{name: name, fn: fn}
}

// NewPeriodicTaskHandler registers fn for a Scheduler task of the same name.
func NewPeriodicTaskHandler(name string, fn PeriodicTaskHandlerFunc) Handler {
	return &periodicHandler{name: name, fn: fn}
}

// TaskName is the default task name for a payload: its Go type without
// pointer markers, e.g. "email.EmailTask".
func TaskName(payload any) string {
	return strings.TrimLeft(fmt.Sprintf("%T", payload), "*")
}

type taskKey struct{}

// ContextWithTask attaches the task being processed to ctx. Workers do
// this before calling a handler.
func ContextWithTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, taskKey{}, *t)
}

// TaskFromContext returns the task a handler was invoked for.
func TaskFromContext(ctx context.Context) (Task, bool) {
	t, ok := ctx.Value(taskKey{}).(Task)
	return t, ok
}

type typedHandler[T any] struct {
	name string
	fn   TaskHandlerFunc[T]
}

func (h *typedHandler[T]) Name() string { return h.name }

func (h *typedHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("decode %s payload: %w", h.name, err)
	}
	return h.fn(ctx, v)
}

type periodicHandler struct {
	name string
	fn   PeriodicTaskHandlerFunc
}

func (h *periodicHandler) Name() string { return h.name }

func (h *periodicHandler) Handle(ctx context.Context, _ json.RawMessage) error {
	return h.fn(ctx)
}
