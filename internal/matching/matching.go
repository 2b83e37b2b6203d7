package matching

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/google/uuid"
)

// Project timelines a brief can ask for.
const (
	TimelineASAP     = "asap"
	TimelineWeeks    = "1-2_weeks"
	TimelineMonth    = "2-4_weeks"
	TimelineMonths   = "1-2_months"
	TimelineFlexible = "flexible"
)

// Designer availability, as time until they can start.
const (
	AvailabilityNow   = "immediate"
	AvailabilityWeeks = "1-2_weeks"
	AvailabilityMonth = "2-4_weeks"
	AvailabilityLater = "1-2_months"
	AvailabilityNone  = "unavailable"
)

// Timelines lists accepted brief timelines.
var Timelines = []string{TimelineASAP, TimelineWeeks, TimelineMonth, TimelineMonths, TimelineFlexible}

// Availabilities lists accepted designer availability values.
var Availabilities = []string{AvailabilityNow, AvailabilityWeeks, AvailabilityMonth, AvailabilityLater, AvailabilityNone}

// Brief is the matching view of a client's project requirements.
// Budgets are hourly rates in USD; zero means no limit.
type Brief struct {
	ID                uuid.UUID `json:"id"`
	ProjectType       string    `json:"project_type"`
	Industry          string    `json:"industry"`
	Styles            []string  `json:"styles"`
	Timeline          string    `json:"timeline"`
	BudgetMin         int       `json:"budget_min"`
	BudgetMax         int       `json:"budget_max"`
	Description       string    `json:"description,omitempty"`
	RequiredTools     []string  `json:"required_tools,omitempty"`
	PreferredTimezone string    `json:"preferred_timezone,omitempty"`
}

// Designer is the anonymous matching view of an approved designer.
type Designer struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	YearsExperience int       `json:"years_experience"`
	Styles          []string  `json:"styles"`
	Industries      []string  `json:"industries"`
	ProjectTypes    []string  `json:"project_types"`
	Tools           []string  `json:"tools,omitempty"`
	Availability    string    `json:"availability"`
	HourlyRateMin   int       `json:"hourly_rate_min"`
	HourlyRateMax   int       `json:"hourly_rate_max"`
	Timezone        string    `json:"timezone,omitempty"`
	Bio             string    `json:"bio,omitempty"`
}

// Result is a scored designer.
type Result struct {
	DesignerID uuid.UUID `json:"designer_id"`
	Score      int       `json:"score"`
	Reasons    []string  `json:"reasons"`
}

// Scorer scores every candidate designer against a brief.
type Scorer interface {
	Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error)
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(ctx context.Context, brief Brief, designers []Designer) ([]Result, error)

func (f ScorerFunc) Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
	return f(ctx, brief, designers)
}

// Rank keeps results scoring at least cfg.MinScore, orders them by score
// (ties by designer id) and truncates to cfg.MaxMatches when positive.
func Rank(results []Result, cfg Config) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Score >= cfg.MinScore {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.DesignerID.String(), b.DesignerID.String())
	})
	if cfg.MaxMatches > 0 && len(out) > cfg.MaxMatches {
		out = out[:cfg.MaxMatches]
	}
	return out
}

// clampScore rounds f into 0..100. Clamping happens before the int
// conversion.
func clampScore(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(min(max(f, 0), 100)))
}
