package matching

import "errors"

var (
	ErrInvalidAPIKey      = errors.New("invalid or missing API key")
	ErrUnknownProvider    = errors.New("unknown matching provider")
	ErrScoringFailed      = errors.New("failed to score designers")
	ErrInvalidAIResponse  = errors.New("invalid AI matching response")
	ErrClientCreateFailed = errors.New("failed to create AI client")
)
