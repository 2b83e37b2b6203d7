package matching

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"
)

// days until a designer can start, and days a brief can wait.
var (
	availabilityDays = map[string]int{
		AvailabilityNow:   0,
		AvailabilityWeeks: 14,
		AvailabilityMonth: 28,
		AvailabilityLater: 60,
	}
	timelineDays = map[string]int{
		TimelineASAP:     7,
		TimelineWeeks:    14,
		TimelineMonth:    28,
		TimelineMonths:   60,
		TimelineFlexible: math.MaxInt32,
	}
)

// HeuristicScorer scores designers deterministically from weighted
// criteria overlap. It needs no network and backs the AI scorers.
type HeuristicScorer struct {
	weights Weights
	now     func() time.Time
}

// NewHeuristicScorer creates a scorer with w, or DefaultWeights when w is zero.
func NewHeuristicScorer(w Weights) *HeuristicScorer {
	if w.total() <= 0 {
		w = DefaultWeights()
	}
	return &HeuristicScorer{weights: w, now: time.Now}
}

// Score implements Scorer.
func (h *HeuristicScorer) Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
	results := make([]Result, 0, len(designers))
	for _, d := range designers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, h.score(brief, d))
	}
	return results, nil
}

type criterion struct {
	weight float64
	value  float64
	reason string
}

func (h *HeuristicScorer) score(b Brief, d Designer) Result {
	styleHits := intersect(b.Styles, d.Styles)
	toolHits := intersect(b.RequiredTools, d.Tools)

	criteria := []criterion{
		{h.weights.Style, coverage(len(styleHits), len(b.Styles)), styleReason(styleHits, len(b.Styles))},
		{h.weights.Industry, boolScore(containsFold(d.Industries, b.Industry)), "Has worked in " + b.Industry},
		{h.weights.ProjectType, boolScore(containsFold(d.ProjectTypes, b.ProjectType)), "Specializes in " + b.ProjectType + " projects"},
		{h.weights.Budget, budgetScore(b, d), "Rate fits your budget"},
		{h.weights.Timeline, timelineScore(b.Timeline, d.Availability), "Available within your timeline"},
		{h.weights.Tools, coverage(len(toolHits), len(b.RequiredTools)), toolReason(toolHits)},
		{h.weights.Timezone, h.timezoneScore(b.PreferredTimezone, d.Timezone), "Works in a compatible timezone"},
	}

	var sum float64
	var reasons []string
	slices.SortStableFunc(criteria, func(a, b criterion) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		}
		return 0
	})
	for _, c := range criteria {
		sum += c.weight * c.value
		if c.value >= 0.5 && c.reason != "" {
			reasons = append(reasons, c.reason)
		}
	}
	if d.YearsExperience >= 5 {
		reasons = append(reasons, fmt.Sprintf("%d years of experience", d.YearsExperience))
	}

	return Result{
		DesignerID: d.ID,
		Score:      clampScore(100 * sum / h.weights.total()),
		Reasons:    reasons,
	}
}

func styleReason(hits []string, wanted int) string {
	if len(hits) == 0 {
		return ""
	}
	return fmt.Sprintf("Matches %d of %d requested styles: %s", len(hits), wanted, strings.Join(hits, ", "))
}

func toolReason(hits []string) string {
	if len(hits) == 0 {
		return ""
	}
	return "Uses " + strings.Join(hits, ", ")
}

// coverage is the share of wanted items found; nothing wanted is a full match.
func coverage(found, wanted int) float64 {
	if wanted == 0 {
		return 1
	}
	return float64(found) / float64(wanted)
}

func boolScore(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

func budgetScore(b Brief, d Designer) float64 {
	if b.BudgetMax <= 0 || d.HourlyRateMin <= 0 {
		return 1
	}
	if d.HourlyRateMin <= b.BudgetMax {
		return 1
	}
	// Partial credit shrinks as the designer's floor moves past the ceiling.
	return max(0, 1-float64(d.HourlyRateMin-b.BudgetMax)/float64(d.HourlyRateMin))
}

func timelineScore(timeline, availability string) float64 {
	wait, ok := timelineDays[timeline]
	if !ok {
		wait = timelineDays[TimelineFlexible]
	}
	start, ok := availabilityDays[availability]
	if !ok {
		return 0
	}
	switch {
	case start <= wait:
		return 1
	case start <= 2*wait:
		return 0.5
	}
	return 0
}

func (h *HeuristicScorer) timezoneScore(preferred, tz string) float64 {
	if preferred == "" || strings.EqualFold(preferred, tz) {
		return 1
	}
	a, errA := time.LoadLocation(preferred)
	b, errB := time.LoadLocation(tz)
	if errA != nil || errB != nil {
		return 0
	}
	now := h.now()
	_, offA := now.In(a).Zone()
	_, offB := now.In(b).Zone()
	diff := math.Abs(float64(offA-offB)) / 3600
	switch {
	case diff <= 1:
		return 1
	case diff <= 3:
		return 0.5
	}
	return 0
}

func containsFold(list []string, s string) bool {
	return slices.ContainsFunc(list, func(v string) bool { return strings.EqualFold(v, s) })
}

// intersect returns items of wanted present in have, in wanted order.
func intersect(wanted, have []string) []string {
	var out []string
	for _, w := range wanted {
		if containsFold(have, w) && !containsFold(out, w) {
			out = append(out, w)
		}
	}
	return out
}
