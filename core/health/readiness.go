package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/response"
)

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 3 * time.Second

// Check is a named dependency check.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the readiness payload.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness runs checks and answers 200 "ready" or 503 "unavailable".
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx C) handler.Response {
		cctx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
		defer cancel()

		report := Report{Status: "ready", Checks: make(map[string]string, len(checks))}
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, c := range checks {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result := "ok"
				if err := c.Fn(cctx); err != nil {
					log.ErrorContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
					result = "failed"
				}
				mu.Lock()
				report.Checks[c.Name] = result
				if result != "ok" {
					report.Status = "unavailable"
				}
				mu.Unlock()
			}()
		}
		wg.Wait()

		if report.Status != "ready" {
			return response.JSONWithStatus(report, http.StatusServiceUnavailable)
		}
		return response.JSON(report)
	}
}
