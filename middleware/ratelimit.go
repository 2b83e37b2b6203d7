package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/response"
	"github.com/onedesigner/onedesigner/pkg/clientip"
	"github.com/onedesigner/onedesigner/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defaults to the client IP.
	KeyExtractor func(ctx handler.Context) string
	// KeyPrefix namespaces keys so several limiters can share a store.
	KeyPrefix string
	// SetHeaders adds X-RateLimit-* headers to every response.
	SetHeaders bool
}

// RateLimit answers 429 once a key exhausts its bucket. It panics without a limiter.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = func(ctx handler.Context) string {
			if ip, ok := GetClientIP(ctx); ok {
				return ip
			}
			return clientip.GetIP(ctx.Request())
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			result, err := cfg.Limiter.Allow(ctx, cfg.KeyPrefix+cfg.KeyExtractor(ctx))
			if err != nil {
				return response.Error(response.ErrServiceUnavailable.WithError(err))
			}

			var resp handler.Response
			if result.Allowed() {
				resp = next(ctx)
			} else {
				retry := int(math.Ceil(result.RetryAfter().Seconds()))
				resp = response.WithHeaders(
					response.Error(response.ErrTooManyRequests.WithDetails(map[string]any{"retry_after": retry})),
					map[string]string{"Retry-After": strconv.Itoa(retry)},
				)
			}

			if !cfg.SetHeaders {
				return resp
			}
			return func(w http.ResponseWriter, r *http.Request) error {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
				return resp(w, r)
			}
		}
	}
}
