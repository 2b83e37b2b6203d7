package app

import (
	"time"

	"github.com/onedesigner/onedesigner/core/config"
	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/core/server"
	"github.com/onedesigner/onedesigner/integration/database/pg"
	"github.com/onedesigner/onedesigner/integration/database/redis"
	"github.com/onedesigner/onedesigner/internal/api"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/matching"
	"github.com/onedesigner/onedesigner/internal/notify"
	"github.com/onedesigner/onedesigner/internal/payments"
)

// Config is the whole application configuration. Email provider
// credentials are loaded separately, only for the selected provider.
type Config struct {
	AppName  string `env:"APP_NAME" envDefault:"onedesigner"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// ExpireRequestsEvery is how often overdue project requests are expired.
	ExpireRequestsEvery time.Duration `env:"EXPIRE_REQUESTS_INTERVAL" envDefault:"15m"`
	// TaskRetention is how long completed Postgres queue tasks are kept.
	TaskRetention time.Duration `env:"QUEUE_TASK_RETENTION" envDefault:"168h"`
	// RateLimitKeyPrefix namespaces rate limit keys in Redis.
	RateLimitKeyPrefix string `env:"RATE_LIMIT_KEY_PREFIX" envDefault:"onedesigner:rl:"`

	Server      server.Config
	DB          pg.Config
	Redis       redis.Config
	Queue       queue.Config
	Email       email.Config
	Matching    matching.Config
	Marketplace marketplace.Config
	Notify      notify.Config
	Payments    payments.Config
	API         api.Config
}

// LoadConfig reads Config from the environment and .env.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Production reports whether the app runs with production logging.
func (c Config) Production() bool {
	return c.Env == "production"
}
