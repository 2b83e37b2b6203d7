package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/onedesigner/onedesigner/core/handler"
	"github.com/onedesigner/onedesigner/core/logger"
)

type statusCode interface {
	StatusCode() int
}

// detailer lets errors contribute structured details, e.g. validation errors.
type detailer interface {
	Details() map[string]any
}

// ToHTTPError converts any error into an HTTPError.
func ToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	base, ok := httpErrorsByStatus[status]
	if !ok {
		base = ErrInternalServerError
	}

	// Internal failures keep their cause out of the payload.
	if status >= http.StatusInternalServerError {
		return base
	}

	out := base.WithMessage(err.Error())
	var d detailer
	if errors.As(err, &d) {
		out = out.WithDetails(d.Details())
	}
	return out
}

// ErrorHandler renders errors as plain text.
func ErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ToHTTPError(err)
	Render(ctx, StringWithStatus(httpErr.Error(), httpErr.Status))
}

// JSONErrorHandler renders errors as JSON.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	httpErr := ToHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}

// NewJSONErrorHandler is JSONErrorHandler that also logs server errors with their cause.
func NewJSONErrorHandler[C handler.Context](log *slog.Logger) handler.ErrorHandler[C] {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx C, err error) {
		httpErr := ToHTTPError(err)
		if httpErr.Status >= http.StatusInternalServerError {
			log.ErrorContext(ctx, "request failed",
				logger.Error(err),
				logger.Method(ctx.Request().Method),
				logger.Path(ctx.Request().URL.Path),
				logger.StatusCode(httpErr.Status),
			)
		}
		Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
	}
}
