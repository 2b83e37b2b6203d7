package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/queue"
)

func startWorker(t *testing.T, storage *queue.MemoryStorage, handlers ...queue.Handler) *queue.Worker {
	t.Helper()

	w, err := queue.NewWorker(storage,
		queue.WithPollInterval(5*time.Millisecond),
		queue.WithMaxConcurrentTasks(2),
		queue.WithShutdownTimeout(time.Second),
	)
	require.NoError(t, err)
	w.RegisterHandlers(handlers...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx)() }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func TestWorker_ProcessesTask(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	var got atomic.Value
	startWorker(t, storage, queue.NewTaskHandler(func(_ context.Context, p welcomeTask) error {
		got.Store(p.Email)
		return nil
	}))

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	task, err := enq.Enqueue(context.Background(), welcomeTask{Email: "designer@example.com"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, err := storage.GetTask(context.Background(), task.ID)
		return err == nil && stored.Status == queue.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "designer@example.com", got.Load())
}

func TestWorker_RetriesThenDeadLetters(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage(queue.WithBackoff(queue.LinearBackoff(time.Millisecond)))
	var calls atomic.Int32
	w := startWorker(t, storage, queue.NewTaskHandler(func(context.Context, welcomeTask) error {
		calls.Add(1)
		return errors.New("provider unavailable")
	}))

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	_, err = enq.Enqueue(context.Background(), welcomeTask{}, queue.WithMaxRetries(3))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		dlq, _ := storage.ListDLQ(context.Background())
		return len(dlq) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(3), w.Stats().TasksFailed)

	dlq, err := storage.ListDLQ(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "provider unavailable", dlq[0].Error)
}

func TestWorker_HandlerSeesTask(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage(queue.WithBackoff(queue.LinearBackoff(time.Millisecond)))
	var attempts []int8
	var mu sync.Mutex
	startWorker(t, storage, queue.NewTaskHandler(func(ctx context.Context, _ welcomeTask) error {
		task, ok := queue.TaskFromContext(ctx)
		if !ok {
			return errors.New("no task in context")
		}
		mu.Lock()
		attempts = append(attempts, task.RetryCount)
		n := len(attempts)
		mu.Unlock()
		if n < 2 {
			return errors.New("try again")
		}
		return nil
	}))

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	task, err := enq.Enqueue(context.Background(), welcomeTask{}, queue.WithMaxRetries(3))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, err := storage.GetTask(context.Background(), task.ID)
		return err == nil && stored.Status == queue.TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int8{0, 1}, attempts)

	_, ok := queue.TaskFromContext(context.Background())
	assert.False(t, ok)
}

func TestWorker_RecoversPanics(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	startWorker(t, storage, queue.NewTaskHandler(func(context.Context, welcomeTask) error {
		panic("nil map")
	}))

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	_, err = enq.Enqueue(context.Background(), welcomeTask{}, queue.WithMaxRetries(0))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		dlq, _ := storage.ListDLQ(context.Background())
		return len(dlq) == 1 && dlq[0].Error != ""
	}, 2*time.Second, 10*time.Millisecond)

	dlq, _ := storage.ListDLQ(context.Background())
	assert.Contains(t, dlq[0].Error, "panic")
}

func TestWorker_MissingHandlerGoesToDLQ(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	startWorker(t, storage, queue.NewPeriodicTaskHandler("unrelated", func(context.Context) error { return nil }))

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	_, err = enq.Enqueue(context.Background(), welcomeTask{}, queue.WithMaxRetries(5))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		dlq, _ := storage.ListDLQ(context.Background())
		return len(dlq) == 1
	}, 2*time.Second, 10*time.Millisecond)

	dlq, _ := storage.ListDLQ(context.Background())
	assert.Equal(t, int8(1), dlq[0].RetryCount)
	assert.Contains(t, dlq[0].Error, "queue_test.welcomeTask")
}

func TestWorker_Lifecycle(t *testing.T) {
	t.Parallel()

	_, err := queue.NewWorker(nil)
	require.ErrorIs(t, err, queue.ErrRepositoryNil)

	w, err := queue.NewWorker(queue.NewMemoryStorage(), queue.WithPollInterval(5*time.Millisecond))
	require.NoError(t, err)

	assert.ErrorIs(t, w.Start(context.Background()), queue.ErrNoHandlers)
	assert.ErrorIs(t, w.Stop(), queue.ErrNotStarted)
	assert.ErrorIs(t, w.Healthcheck(context.Background()), queue.ErrWorkerNotRunning)
	assert.Equal(t, []string{queue.DefaultQueueName}, w.Queues())

	w.RegisterHandler(queue.NewPeriodicTaskHandler("noop", func(context.Context) error { return nil }))
	w.RegisterHandler(nil)
	assert.Equal(t, 1, w.HandlerCount())

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start(context.Background()) }()

	require.Eventually(t, func() bool { return w.Stats().IsRunning }, time.Second, 5*time.Millisecond)
	assert.NoError(t, w.Healthcheck(context.Background()))
	assert.ErrorIs(t, w.Start(context.Background()), queue.ErrAlreadyStarted)

	require.NoError(t, w.Stop())
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.False(t, w.Stats().IsRunning)
}

func TestWorker_HealthcheckOverloaded(t *testing.T) {
	t.Parallel()

	storage := queue.NewMemoryStorage()
	release := make(chan struct{})
	w, err := queue.NewWorker(storage,
		queue.WithPollInterval(5*time.Millisecond),
		queue.WithMaxConcurrentTasks(1),
	)
	require.NoError(t, err)
	w.RegisterHandler(queue.NewTaskHandler(func(context.Context, welcomeTask) error {
		<-release
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)()

	enq, err := queue.NewEnqueuer(storage)
	require.NoError(t, err)
	_, err = enq.Enqueue(ctx, welcomeTask{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return errors.Is(w.Healthcheck(ctx), queue.ErrWorkerOverloaded)
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	require.Eventually(t, func() bool { return w.Healthcheck(ctx) == nil }, 2*time.Second, 5*time.Millisecond)
}
