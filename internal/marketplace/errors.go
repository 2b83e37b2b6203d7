package marketplace

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrRepositoryNil         = errors.New("repository is nil")
	ErrAlreadyExists         = errors.New("already exists")
	ErrForbidden             = errors.New("not allowed for this account")
	ErrInsufficientCredits   = errors.New("insufficient match credits")
	ErrDesignerNotPending    = errors.New("designer application already reviewed")
	ErrMatchLocked           = errors.New("match must be unlocked first")
	ErrRequestExists         = errors.New("a pending project request already exists for this match")
	ErrRequestNotPending     = errors.New("project request is no longer pending")
	ErrRequestExpired        = errors.New("project request has expired")
	ErrBriefClosed           = errors.New("brief is closed")
	ErrInvalidCreditPurchase = errors.New("invalid credit purchase")
)
