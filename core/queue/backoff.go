package queue

import "time"

// Backoff returns how long a task waits before its next attempt, given the
// number of failures recorded so far (1 after the first failure).
type Backoff func(failures int) time.Duration

// ExponentialBackoff doubles the delay after every failure starting from
// base and never exceeds limit.
func ExponentialBackoff(base, limit time.Duration) Backoff {
	return func(failures int) time.Duration {
		if failures < 1 {
			failures = 1
		}
		d := base
		for i := 1; i < failures; i++ {
			d *= 2
			if d >= limit || d <= 0 {
				return limit
			}
		}
		return min(d, limit)
	}
}

// LinearBackoff waits failures*step.
func LinearBackoff(step time.Duration) Backoff {
	return func(failures int) time.Duration {
		if failures < 1 {
			failures = 1
		}
		return time.Duration(failures) * step
	}
}

// DefaultBackoff is used by MemoryStorage and the Postgres task store
// unless another policy is configured.
var DefaultBackoff = ExponentialBackoff(time.Second, 5*time.Minute)
