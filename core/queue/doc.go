// Package queue is a background task queue with priorities, delayed and
// periodic tasks, retries with a pluggable backoff policy and a dead letter
// queue.
//
// # Components
//
//   - Enqueuer creates tasks.
//   - Worker claims due tasks and runs the registered Handler.
//   - Scheduler creates one pending task per periodic schedule.
//   - Service ties the three together over one Storage.
//
// Storage is pluggable. MemoryStorage keeps everything in process for
// development and tests; internal/taskstore persists tasks in Postgres.
//
// # Basic Usage
//
//	var cfg queue.Config
//	config.MustLoad(&cfg)
//
//	storage := queue.NewMemoryStorage(queue.WithBackoff(cfg.Backoff()))
//	svc, err := queue.NewServiceFromConfig(cfg, storage, log)
//	if err != nil {
//		return err
//	}
//
//	type WelcomeTask struct {
//		Email string `json:"email"`
//	}
//
//	svc.RegisterHandler(queue.NewTaskHandler(func(ctx context.Context, t WelcomeTask) error {
//		return mailer.SendWelcome(ctx, t.Email)
//	}))
//
//	go svc.Run(ctx)
//
//	_, err = svc.Enqueue(ctx, WelcomeTask{Email: "a@b.co"}, queue.WithPriority(queue.PriorityHigh))
//
// Payloads are stored as JSON. NewTaskHandler derives the task name from the
// payload type, the same name Enqueue uses, so the two sides pair up without
// naming anything. Use WithTaskName and NewNamedTaskHandler for a stable
// name that survives renaming the type.
//
// # Delayed and Periodic Tasks
//
//	svc.EnqueueWithDelay(ctx, ReminderTask{ID: id}, 24*time.Hour)
//	svc.EnqueueAt(ctx, ReminderTask{ID: id}, deadline)
//
//	svc.RegisterHandler(queue.NewPeriodicTaskHandler("expire_project_requests", expire))
//	_ = svc.AddScheduledTask("expire_project_requests", queue.Every(time.Hour))
//	_ = svc.AddScheduledTask("purge_completed_tasks", queue.Daily(3, 0))
//
// The scheduler checks for an existing pending task by name before creating
// the next one, so several instances sharing Postgres storage do not pile
// up duplicates.
//
// # Ordering
//
// Workers claim the highest-priority due task, FIFO within a priority. A
// claimed task is locked for Config.LockTimeout; a long handler can call
// Worker.ExtendLock. Locks of crashed workers expire and the task becomes
// claimable again.
//
// # Retries and the Dead Letter Queue
//
// A handler error fails the attempt. The storage reschedules the task after
// Backoff(failures) until RetryCount reaches MaxRetries, then marks it failed
// and copies it to the dead letter queue. Tasks without a registered handler
// are dead-lettered immediately, and panics are recovered and treated as
// failures.
//
// A handler can see which attempt it is running:
//
//	func(ctx context.Context, p Payload) error {
//		task, ok := queue.TaskFromContext(ctx)
//		if ok && task.Exhausted() {
//			// last attempt
//		}
//		...
//	}
//
// ExponentialBackoff doubles from a base delay up to a limit; LinearBackoff
// grows by a fixed step. Config.Backoff builds the exponential policy from
// QUEUE_BACKOFF_BASE and QUEUE_BACKOFF_MAX.
//
// # Shutdown
//
// Run blocks until ctx is cancelled. The worker stops claiming, waits up to
// its shutdown timeout for running handlers and then returns.
package queue
