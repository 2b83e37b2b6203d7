package email

import "errors"

// Provider and service failures. Providers join their own error with
// ErrFailedToSendEmail so callers can match either.
var (
	ErrFailedToSendEmail = errors.New("failed to send email")
	ErrInvalidConfig     = errors.New("invalid email configuration")
	ErrInvalidParams     = errors.New("invalid email parameters")
	ErrRateLimited       = errors.New("email rate limit exceeded")
	ErrQueueUnavailable  = errors.New("email queue is not configured")
)
