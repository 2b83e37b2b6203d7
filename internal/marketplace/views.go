package marketplace

import (
	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/internal/matching"
)

// DesignerProfile is what a client sees before unlocking: no name or contact.
type DesignerProfile struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	City            string    `json:"city,omitempty"`
	Country         string    `json:"country,omitempty"`
	Timezone        string    `json:"timezone,omitempty"`
	YearsExperience int       `json:"years_experience"`
	Styles          []string  `json:"styles"`
	Industries      []string  `json:"industries"`
	ProjectTypes    []string  `json:"project_types"`
	Tools           []string  `json:"tools,omitempty"`
	Availability    string    `json:"availability"`
	HourlyRateMin   int       `json:"hourly_rate_min"`
	HourlyRateMax   int       `json:"hourly_rate_max"`
	Bio             string    `json:"bio,omitempty"`
}

// DesignerContact is revealed by an unlock.
type DesignerContact struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PortfolioURL string    `json:"portfolio_url,omitempty"`
}

// ClientContact is revealed to a designer who approves a project request.
type ClientContact struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Company string    `json:"company,omitempty"`
}

// MatchView is a match with the designer as the client may see it.
type MatchView struct {
	Match
	Designer DesignerProfile  `json:"designer"`
	Contact  *DesignerContact `json:"contact,omitempty"`
}

// BriefMatches groups a brief with its matches.
type BriefMatches struct {
	Brief   Brief       `json:"brief"`
	Matches []MatchView `json:"matches"`
}

// Dashboard is the client dashboard payload.
type Dashboard struct {
	Client            Client            `json:"client"`
	Briefs            []BriefMatches    `json:"briefs"`
	UnlockedDesigners []DesignerContact `json:"unlocked_designers"`
}

// UnlockResult is returned by UnlockMatch.
type UnlockResult struct {
	Match            Match           `json:"match"`
	Contact          DesignerContact `json:"contact"`
	CreditsRemaining int             `json:"credits_remaining"`
	AlreadyUnlocked  bool            `json:"already_unlocked"`
}

// DesignerRequestView is a project request on the designer dashboard.
// Client is set once the designer approved.
type DesignerRequestView struct {
	Request ProjectRequest `json:"request"`
	Brief   Brief          `json:"brief"`
	Client  *ClientContact `json:"client,omitempty"`
}

// RespondResult is returned by RespondToProjectRequest.
type RespondResult struct {
	Request ProjectRequest `json:"request"`
	Client  *ClientContact `json:"client,omitempty"`
}

func (d Designer) Profile() DesignerProfile {
	return DesignerProfile{
		ID:              d.ID,
		Title:           d.Title,
		City:            d.City,
		Country:         d.Country,
		Timezone:        d.Timezone,
		YearsExperience: d.YearsExperience,
		Styles:          d.Styles,
		Industries:      d.Industries,
		ProjectTypes:    d.ProjectTypes,
		Tools:           d.Tools,
		Availability:    d.Availability,
		HourlyRateMin:   d.HourlyRateMin,
		HourlyRateMax:   d.HourlyRateMax,
		Bio:             d.Bio,
	}
}

func (d Designer) Contact() DesignerContact {
	return DesignerContact{
		ID:           d.ID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Email:        d.Email,
		Phone:        d.Phone,
		PortfolioURL: d.PortfolioURL,
	}
}

func (c Client) Contact() ClientContact {
	return ClientContact{ID: c.ID, Name: c.Name, Email: c.Email, Company: c.Company}
}

func (b Brief) matchingBrief() matching.Brief {
	return matching.Brief{
		ID:                b.ID,
		ProjectType:       b.ProjectType,
		Industry:          b.Industry,
		Styles:            b.Styles,
		Timeline:          b.Timeline,
		BudgetMin:         b.BudgetMin,
		BudgetMax:         b.BudgetMax,
		Description:       b.Description,
		RequiredTools:     b.RequiredTools,
		PreferredTimezone: b.PreferredTimezone,
	}
}

func (d Designer) candidate() matching.Designer {
	return matching.Designer{
		ID:              d.ID,
		Title:           d.Title,
		YearsExperience: d.YearsExperience,
		Styles:          d.Styles,
		Industries:      d.Industries,
		ProjectTypes:    d.ProjectTypes,
		Tools:           d.Tools,
		Availability:    d.Availability,
		HourlyRateMin:   d.HourlyRateMin,
		HourlyRateMax:   d.HourlyRateMax,
		Timezone:        d.Timezone,
		Bio:             d.Bio,
	}
}
