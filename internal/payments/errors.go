package payments

import (
	"errors"
	"net/http"
)

// Error is a webhook failure carrying the HTTP status to answer with.
// Lemon Squeezy retries deliveries that do not get a 2xx.
type Error struct {
	msg    string
	status int
}

func (e *Error) Error() string   { return e.msg }
func (e *Error) StatusCode() int { return e.status }

var (
	ErrMissingSignature = &Error{msg: "missing webhook signature", status: http.StatusUnauthorized}
	ErrInvalidSignature = &Error{msg: "invalid webhook signature", status: http.StatusUnauthorized}
	ErrInvalidPayload   = &Error{msg: "invalid webhook payload", status: http.StatusBadRequest}
	ErrMissingClientID  = &Error{msg: "order has no valid client_id in custom data", status: http.StatusUnprocessableEntity}
	ErrUnknownVariant   = &Error{msg: "order variant is not a credit pack", status: http.StatusUnprocessableEntity}
)

var (
	ErrInvalidConfig = errors.New("invalid payments config")
	ErrNilCredits    = errors.New("credit service is nil")
)
