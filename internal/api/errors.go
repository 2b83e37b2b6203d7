package api

import (
	"errors"

	"github.com/onedesigner/onedesigner/core/response"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

var (
	errMissingClient   = response.ErrUnauthorized.WithMessage("missing or invalid X-Client-ID header")
	errMissingDesigner = response.ErrUnauthorized.WithMessage("missing or invalid X-Designer-ID header")
	errAdminOnly       = response.ErrUnauthorized.WithMessage("admin token required")
	errInvalidID       = response.ErrBadRequest.WithMessage("invalid id in path")
)

// domainErrors maps marketplace sentinels to HTTP errors. Order matters only
// for errors wrapping more than one sentinel.
var domainErrors = []struct {
	err  error
	http response.HTTPError
}{
	{marketplace.ErrNotFound, response.ErrNotFound},
	{marketplace.ErrForbidden, response.ErrForbidden},
	{marketplace.ErrAlreadyExists, response.ErrConflict},
	{marketplace.ErrInsufficientCredits, response.ErrPaymentRequired},
	{marketplace.ErrDesignerNotPending, response.ErrConflict},
	{marketplace.ErrMatchLocked, response.ErrConflict},
	{marketplace.ErrRequestExists, response.ErrConflict},
	{marketplace.ErrRequestNotPending, response.ErrConflict},
	{marketplace.ErrRequestExpired, response.ErrGone},
	{marketplace.ErrBriefClosed, response.ErrConflict},
	{marketplace.ErrInvalidCreditPurchase, response.ErrUnprocessableEntity},
}

// mapError converts marketplace errors into HTTP errors. Anything else,
// including validation errors, is left to response.ToHTTPError.
func mapError(err error) error {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return m.http.WithMessage(m.err.Error())
		}
	}
	return err
}
