package queue

import "time"

// Config holds environment-driven settings for the worker, scheduler,
// enqueuer and retry policy.
type Config struct {
	PollInterval       time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`
	LockTimeout        time.Duration `env:"QUEUE_LOCK_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout    time.Duration `env:"QUEUE_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MaxConcurrentTasks int           `env:"QUEUE_MAX_CONCURRENT_TASKS" envDefault:"10"`
	Queues             []string      `env:"QUEUE_WORKER_QUEUES" envDefault:"default,emails" envSeparator:","`

	CheckInterval time.Duration `env:"QUEUE_CHECK_INTERVAL" envDefault:"10s"`

	DefaultQueue      string   `env:"QUEUE_DEFAULT_QUEUE" envDefault:"default"`
	DefaultPriority   Priority `env:"QUEUE_DEFAULT_PRIORITY" envDefault:"50"`
	DefaultMaxRetries int8     `env:"QUEUE_DEFAULT_MAX_RETRIES" envDefault:"3"`

	BackoffBase time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"1s"`
	BackoffMax  time.Duration `env:"QUEUE_BACKOFF_MAX" envDefault:"5m"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		PollInterval:       time.Second,
		LockTimeout:        5 * time.Minute,
		ShutdownTimeout:    30 * time.Second,
		MaxConcurrentTasks: 10,
		Queues:             []string{DefaultQueueName, "emails"},
		CheckInterval:      10 * time.Second,
		DefaultQueue:       DefaultQueueName,
		DefaultPriority:    PriorityDefault,
		DefaultMaxRetries:  3,
		BackoffBase:        time.Second,
		BackoffMax:         5 * time.Minute,
	}
}

// Backoff builds the exponential retry policy described by the config.
func (c Config) Backoff() Backoff {
	if c.BackoffBase <= 0 || c.BackoffMax <= 0 {
		return DefaultBackoff
	}
	return ExponentialBackoff(c.BackoffBase, c.BackoffMax)
}
