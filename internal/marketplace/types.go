package marketplace

import (
	"time"

	"github.com/google/uuid"
)

type DesignerStatus string

const (
	DesignerPending  DesignerStatus = "pending"
	DesignerApproved DesignerStatus = "approved"
	DesignerRejected DesignerStatus = "rejected"
)

type BriefStatus string

const (
	BriefActive  BriefStatus = "active"
	BriefMatched BriefStatus = "matched"
	BriefClosed  BriefStatus = "closed"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchUnlocked  MatchStatus = "unlocked"
	MatchContacted MatchStatus = "contacted"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
	RequestExpired  RequestStatus = "expired"
)

// Client is a company or person looking for a designer.
type Client struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Company      string    `json:"company,omitempty"`
	MatchCredits int       `json:"match_credits"`
	CreatedAt    time.Time `json:"created_at"`
}

// Designer is a freelance designer profile. Contact fields stay hidden
// from clients until they unlock a match.
type Designer struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	FirstName       string         `json:"first_name"`
	LastName        string         `json:"last_name"`
	Title           string         `json:"title"`
	City            string         `json:"city,omitempty"`
	Country         string         `json:"country,omitempty"`
	Timezone        string         `json:"timezone,omitempty"`
	YearsExperience int            `json:"years_experience"`
	Styles          []string       `json:"styles"`
	Industries      []string       `json:"industries"`
	ProjectTypes    []string       `json:"project_types"`
	Tools           []string       `json:"tools"`
	Availability    string         `json:"availability"`
	HourlyRateMin   int            `json:"hourly_rate_min"`
	HourlyRateMax   int            `json:"hourly_rate_max"`
	PortfolioURL    string         `json:"portfolio_url,omitempty"`
	Bio             string         `json:"bio,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	Status          DesignerStatus `json:"status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
}

// FullName joins first and last name.
func (d Designer) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}

// Brief is a client's project requirements. Budgets are hourly USD.
type Brief struct {
	ID                uuid.UUID   `json:"id"`
	ClientID          uuid.UUID   `json:"client_id"`
	ProjectType       string      `json:"project_type"`
	Industry          string      `json:"industry"`
	Styles            []string    `json:"styles"`
	Timeline          string      `json:"timeline"`
	BudgetMin         int         `json:"budget_min"`
	BudgetMax         int         `json:"budget_max"`
	Description       string      `json:"description,omitempty"`
	RequiredTools     []string    `json:"required_tools,omitempty"`
	PreferredTimezone string      `json:"preferred_timezone,omitempty"`
	Status            BriefStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Match pairs a designer with a brief.
type Match struct {
	ID         uuid.UUID   `json:"id"`
	BriefID    uuid.UUID   `json:"brief_id"`
	DesignerID uuid.UUID   `json:"designer_id"`
	Score      int         `json:"score"`
	Reasons    []string    `json:"reasons"`
	Status     MatchStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UnlockedAt *time.Time  `json:"unlocked_at,omitempty"`
}

// Unlocked reports whether the client paid to see the designer's contact.
func (m Match) Unlocked() bool {
	return m.Status == MatchUnlocked || m.Status == MatchContacted
}

// Unlock records a credit spent on a match.
type Unlock struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	DesignerID  uuid.UUID `json:"designer_id"`
	MatchID     uuid.UUID `json:"match_id"`
	CreditsUsed int       `json:"credits_used"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectRequest is a client's contact request to an unlocked designer.
type ProjectRequest struct {
	ID              uuid.UUID     `json:"id"`
	MatchID         uuid.UUID     `json:"match_id"`
	ClientID        uuid.UUID     `json:"client_id"`
	DesignerID      uuid.UUID     `json:"designer_id"`
	Message         string        `json:"message"`
	Status          RequestStatus `json:"status"`
	ResponseMessage string        `json:"response_message,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	RespondedAt     *time.Time    `json:"responded_at,omitempty"`
	ExpiresAt       time.Time     `json:"expires_at"`
}

// CreditPurchase is a paid order that added credits.
type CreditPurchase struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	OrderID     string    `json:"order_id"`
	Credits     int       `json:"credits"`
	AmountCents int       `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes marketplace activity for the admin dashboard.
type Stats struct {
	Designers       map[DesignerStatus]int `json:"designers"`
	Clients         int                    `json:"clients"`
	Briefs          int                    `json:"briefs"`
	Matches         int                    `json:"matches"`
	Unlocks         int                    `json:"unlocks"`
	ProjectRequests int                    `json:"project_requests"`
	CreditsSold     int                    `json:"credits_sold"`
	RevenueCents    int                    `json:"revenue_cents"`
}
