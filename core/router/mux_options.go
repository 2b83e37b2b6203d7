package router

import (
	"log/slog"
	"net/http"

	"github.com/onedesigner/onedesigner/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*table[C])

// WithErrorHandler sets the handler for errors returned by responses.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(t *table[C]) {
		if h != nil {
			t.errorHandler = h
		}
	}
}

// WithContextFactory sets how request contexts are built.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request) C) Option[C] {
	return func(t *table[C]) {
		if f != nil {
			t.newContext = f
		}
	}
}

// WithLogger sets the logger used for panics after the response was written.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(t *table[C]) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMiddleware adds root middleware.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(t *table[C]) {
		t.rootMiddlewares = append(t.rootMiddlewares, middlewares...)
	}
}
