package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter decides whether a keyed action may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*Result, error)
	AllowN(ctx context.Context, key string, n int) (*Result, error)
}

// Store keeps bucket state. ConsumeTokens must be atomic: tokens are taken
// only when enough are available. A negative remaining reports the deficit.
type Store interface {
	ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// Config describes a token bucket.
type Config struct {
	Capacity       int           `env:"CAPACITY" envDefault:"2"`
	RefillRate     int           `env:"REFILL_RATE" envDefault:"2"`
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1s"`
}

// PerSecond is a bucket allowing n actions per second with a burst of n.
func PerSecond(n int) Config {
	return Config{Capacity: n, RefillRate: n, RefillInterval: time.Second}
}

// Validate checks that the bucket can ever refill.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive", ErrInvalidConfig)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive", ErrInvalidConfig)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive", ErrInvalidConfig)
	}
	return nil
}

// Result is the outcome of a consume call.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time

	retryAfter time.Duration
}

// Allowed reports whether the tokens were granted.
func (r *Result) Allowed() bool { return r.Remaining >= 0 }

// RetryAfter is how long to wait until the denied request would fit.
// It is zero for allowed results.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return r.retryAfter
}

// Bucket is a RateLimiter backed by a Store.
type Bucket struct {
	store  Store
	config Config
	now    func() time.Time
}

// NewBucket validates config and builds a limiter over store.
func NewBucket(store Store, config Config) (*Bucket, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store is nil", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Bucket{store: store, config: config, now: time.Now}, nil
}

func (b *Bucket) Allow(ctx context.Context, key string) (*Result, error) {
	return b.AllowN(ctx, key, 1)
}

func (b *Bucket) AllowN(ctx context.Context, key string, n int) (*Result, error) {
	if n <= 0 || n > b.config.Capacity {
		return nil, fmt.Errorf("%w: %d (capacity %d)", ErrInvalidTokenCount, n, b.config.Capacity)
	}
	return b.consume(ctx, key, n)
}

// Status reports the bucket without consuming tokens.
func (b *Bucket) Status(ctx context.Context, key string) (*Result, error) {
	return b.consume(ctx, key, 0)
}

func (b *Bucket) Reset(ctx context.Context, key string) error {
	return b.store.Reset(ctx, key)
}

// Config returns the bucket configuration.
func (b *Bucket) Config() Config { return b.config }

func (b *Bucket) consume(ctx context.Context, key string, n int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	remaining, resetAt, err := b.store.ConsumeTokens(ctx, key, n, b.config)
	if err != nil {
		return nil, err
	}

	res := &Result{Limit: b.config.Capacity, Remaining: remaining, ResetAt: resetAt}
	if remaining < 0 {
		// The next refill lands at resetAt; each further interval adds RefillRate tokens.
		deficit := -remaining
		extra := (deficit - 1) / b.config.RefillRate
		res.retryAfter = max(0, resetAt.Sub(b.now())) + time.Duration(extra)*b.config.RefillInterval
	}
	return res, nil
}

// Wait blocks until n tokens are granted for key or ctx is done.
func Wait(ctx context.Context, limiter RateLimiter, key string, n int) error {
	for {
		res, err := limiter.AllowN(ctx, key, n)
		if err != nil {
			return err
		}
		if res.Allowed() {
			return nil
		}

		delay := max(res.RetryAfter(), time.Millisecond)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
