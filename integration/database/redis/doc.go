// Package redis connects the shared Redis instance that backs the
// distributed rate limiter (ratelimiter.RedisStore), so every API replica
// draws from one email provider budget and one per-IP request budget.
//
// Connect accepts redis:// and rediss:// URLs, pings until the server
// answers and gives up after Config.RetryAttempts or Config.ConnectTimeout:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: 2 * time.Second,
//	})
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Healthcheck wraps PING as a readiness check.
package redis
