package email

import "time"

// Config selects the provider and tunes delivery. Provider credentials live
// in the provider packages.
type Config struct {
	Provider      string        `env:"EMAIL_PROVIDER" envDefault:"dev"` // resend, postmark, smtp or dev
	DevDir        string        `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	RatePerSecond int           `env:"EMAIL_RATE_PER_SECOND" envDefault:"2"`
	MaxRateWait   time.Duration `env:"EMAIL_MAX_RATE_WAIT" envDefault:"30s"`
	MaxAttempts   int           `env:"EMAIL_MAX_ATTEMPTS" envDefault:"3"`
	BaseDelay     time.Duration `env:"EMAIL_RETRY_BASE_DELAY" envDefault:"1s"`
	MaxDelay      time.Duration `env:"EMAIL_RETRY_MAX_DELAY" envDefault:"30s"`
	QueueName     string        `env:"EMAIL_QUEUE" envDefault:"emails"`
	QueueRetries  int8          `env:"EMAIL_QUEUE_MAX_RETRIES" envDefault:"5"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		Provider:      "dev",
		DevDir:        "./tmp/emails",
		RatePerSecond: 2,
		MaxRateWait:   30 * time.Second,
		MaxAttempts:   3,
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		QueueName:     "emails",
		QueueRetries:  5,
	}
}
