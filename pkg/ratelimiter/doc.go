// Package ratelimiter implements token bucket rate limiting over pluggable stores.
//
// A Bucket holds Capacity tokens and adds RefillRate tokens every
// RefillInterval. Consuming is all-or-nothing: a denied request takes no
// tokens and its Result reports how long to wait.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.PerSecond(2))
//	res, err := bucket.Allow(ctx, "email:resend")
//	if !res.Allowed() {
//		time.Sleep(res.RetryAfter())
//	}
//
// Wait wraps that loop and honours context cancellation.
//
// MemoryStore keeps state in process and drops buckets idle for an hour when
// its cleanup loop runs (Run fits errgroup). RedisStore evaluates the same
// algorithm in a Lua script so several instances share one budget.
package ratelimiter
