package queue

import (
	"log/slog"
	"time"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	checkInterval   time.Duration
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// WithCheckInterval sets how often periodic tasks are checked.
func WithCheckInterval(d time.Duration) SchedulerOption {
	return func(o *schedulerOptions) {
		if d > 0 {
			o.checkInterval = d
		}
	}
}

// WithSchedulerShutdownTimeout bounds Stop.
func WithSchedulerShutdownTimeout(d time.Duration) SchedulerOption {
	return func(o *schedulerOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l *slog.Logger) SchedulerOption {
	return func(o *schedulerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// SchedulerTaskOption configures the tasks a periodic entry produces.
type SchedulerTaskOption func(*periodicTask)

// WithTaskQueue routes produced tasks to queue.
func WithTaskQueue(queue string) SchedulerTaskOption {
	return func(p *periodicTask) {
		if queue != "" {
			p.queue = queue
		}
	}
}

// WithTaskPriority sets the priority of produced tasks.
func WithTaskPriority(priority Priority) SchedulerTaskOption {
	return func(p *periodicTask) {
		if priority.Valid() {
			p.priority = priority
		}
	}
}

// WithTaskMaxRetries sets the retry budget of produced tasks, capped at 10.
func WithTaskMaxRetries(n int8) SchedulerTaskOption {
	return func(p *periodicTask) {
		if n >= 0 && n <= 10 {
			p.maxRetries = n
		}
	}
}
