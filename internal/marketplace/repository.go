package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists marketplace entities. Lookups of missing rows return
// ErrNotFound; unique violations return ErrAlreadyExists.
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)

	CreateDesigner(ctx context.Context, d *Designer) error
	GetDesigner(ctx context.Context, id uuid.UUID) (*Designer, error)
	// ListDesigners returns designers with status, or all when status is empty,
	// oldest first.
	ListDesigners(ctx context.Context, status DesignerStatus) ([]Designer, error)
	// ReviewDesigner moves a pending designer to approved or rejected and
	// returns ErrDesignerNotPending otherwise.
	ReviewDesigner(ctx context.Context, id uuid.UUID, status DesignerStatus, reason string, at time.Time) (*Designer, error)

	CreateBrief(ctx context.Context, b *Brief) error
	GetBrief(ctx context.Context, id uuid.UUID) (*Brief, error)
	ListBriefsByClient(ctx context.Context, clientID uuid.UUID) ([]Brief, error)

	// SaveMatches marks an active brief matched and stores its matches.
	// It reports false without storing anything when the brief is no
	// longer active.
	SaveMatches(ctx context.Context, briefID uuid.UUID, matches []Match) (bool, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*Match, error)
	// ListMatchesByBrief returns matches best score first.
	ListMatchesByBrief(ctx context.Context, briefID uuid.UUID) ([]Match, error)

	// UnlockMatch atomically spends one client credit, records an Unlock and
	// marks the match unlocked. For an already unlocked match it returns the
	// existing unlock and created=false without charging. A zero balance
	// yields ErrInsufficientCredits.
	UnlockMatch(ctx context.Context, clientID, matchID uuid.UUID, at time.Time) (unlock *Unlock, created bool, err error)
	ListUnlocksByClient(ctx context.Context, clientID uuid.UUID) ([]Unlock, error)

	// CreateProjectRequest stores r and marks its match contacted. It returns
	// ErrRequestExists while another request for the match is pending.
	CreateProjectRequest(ctx context.Context, r *ProjectRequest) error
	GetProjectRequest(ctx context.Context, id uuid.UUID) (*ProjectRequest, error)
	ListProjectRequestsByDesigner(ctx context.Context, designerID uuid.UUID) ([]ProjectRequest, error)
	// RespondProjectRequest settles a pending request or returns ErrRequestNotPending.
	RespondProjectRequest(ctx context.Context, id uuid.UUID, status RequestStatus, message string, at time.Time) (*ProjectRequest, error)
	// ExpireProjectRequests marks pending requests past their deadline
	// expired and returns them.
	ExpireProjectRequests(ctx context.Context, now time.Time) ([]ProjectRequest, error)

	// AddCredits records p and credits the client once per order id.
	// A repeated order returns applied=false.
	AddCredits(ctx context.Context, p *CreditPurchase) (applied bool, err error)

	Stats(ctx context.Context) (Stats, error)
}
