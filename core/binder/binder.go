package binder

import "net/http"

// Binder binds request data into v.
type Binder func(r *http.Request, v any) error

// Error is a binding failure. It reports the HTTP status it should render with.
type Error struct {
	msg    string
	status int
}

func (e *Error) Error() string   { return e.msg }
func (e *Error) StatusCode() int { return e.status }

var (
	ErrUnsupportedMediaType = &Error{msg: "unsupported media type", status: http.StatusUnsupportedMediaType}
	ErrMissingContentType   = &Error{msg: "missing content type", status: http.StatusUnsupportedMediaType}
	ErrBodyTooLarge         = &Error{msg: "request body too large", status: http.StatusRequestEntityTooLarge}
	ErrFailedToParseJSON    = &Error{msg: "failed to parse JSON request body", status: http.StatusBadRequest}
	ErrFailedToParseQuery   = &Error{msg: "failed to parse query parameters", status: http.StatusBadRequest}
)
