package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/internal/matching"
)

var (
	idA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	idB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	idC = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
)

func TestRank(t *testing.T) {
	t.Parallel()

	results := []matching.Result{
		{DesignerID: idC, Score: 70},
		{DesignerID: idA, Score: 40},
		{DesignerID: idB, Score: 70},
		{DesignerID: uuid.New(), Score: 95},
		{DesignerID: uuid.New(), Score: 55},
	}

	ranked := matching.Rank(results, matching.Config{MinScore: 50, MaxMatches: 3})
	require.Len(t, ranked, 3)
	assert.Equal(t, 95, ranked[0].Score)
	assert.Equal(t, idB, ranked[1].DesignerID, "ties order by designer id")
	assert.Equal(t, idC, ranked[2].DesignerID)

	all := matching.Rank(results, matching.Config{MinScore: 0})
	assert.Len(t, all, 5)

	assert.Empty(t, matching.Rank(results, matching.Config{MinScore: 100}))
}

func brief() matching.Brief {
	return matching.Brief{
		ID:            uuid.New(),
		ProjectType:   "branding",
		Industry:      "fintech",
		Styles:        []string{"minimal", "bold"},
		Timeline:      matching.TimelineWeeks,
		BudgetMin:     50,
		BudgetMax:     120,
		RequiredTools: []string{"Figma"},
	}
}

func TestHeuristicScorer(t *testing.T) {
	t.Parallel()

	perfect := matching.Designer{
		ID:              idA,
		Styles:          []string{"Minimal", "Bold", "playful"},
		Industries:      []string{"FinTech"},
		ProjectTypes:    []string{"branding", "web"},
		Tools:           []string{"figma"},
		Availability:    matching.AvailabilityNow,
		HourlyRateMin:   80,
		HourlyRateMax:   150,
		YearsExperience: 8,
	}
	poor := matching.Designer{
		ID:            idB,
		Styles:        []string{"vintage"},
		Industries:    []string{"gaming"},
		ProjectTypes:  []string{"illustration"},
		Availability:  matching.AvailabilityNone,
		HourlyRateMin: 400,
	}

	scorer := matching.NewHeuristicScorer(matching.Weights{})
	results, err := scorer.Score(context.Background(), brief(), []matching.Designer{perfect, poor})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, idA, results[0].DesignerID)
	assert.Equal(t, 100, results[0].Score)
	assert.Contains(t, results[0].Reasons, "Matches 2 of 2 requested styles: minimal, bold")
	assert.Contains(t, results[0].Reasons, "Has worked in fintech")
	assert.Contains(t, results[0].Reasons, "8 years of experience")

	assert.Less(t, results[1].Score, 50)
	assert.NotContains(t, results[1].Reasons, "Has worked in fintech")
}

func TestHeuristicScorer_PartialStyles(t *testing.T) {
	t.Parallel()

	d := matching.Designer{
		ID:           idA,
		Styles:       []string{"minimal"},
		Industries:   []string{"fintech"},
		ProjectTypes: []string{"branding"},
		Tools:        []string{"Figma"},
		Availability: matching.AvailabilityWeeks,
	}
	results, err := matching.NewHeuristicScorer(matching.DefaultWeights()).
		Score(context.Background(), brief(), []matching.Designer{d})
	require.NoError(t, err)
	// Half the style weight is lost: 100 - 15.
	assert.Equal(t, 85, results[0].Score)
}

func TestHeuristicScorer_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := matching.NewHeuristicScorer(matching.DefaultWeights()).
		Score(ctx, brief(), []matching.Designer{{ID: idA}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackScorer(t *testing.T) {
	t.Parallel()

	failing := matching.ScorerFunc(func(context.Context, matching.Brief, []matching.Designer) ([]matching.Result, error) {
		return nil, errors.New("model overloaded")
	})
	backup := matching.ScorerFunc(func(_ context.Context, _ matching.Brief, ds []matching.Designer) ([]matching.Result, error) {
		return []matching.Result{{DesignerID: ds[0].ID, Score: 61}}, nil
	})

	results, err := matching.NewFallbackScorer(failing, backup, nil).
		Score(context.Background(), brief(), []matching.Designer{{ID: idA}})
	require.NoError(t, err)
	assert.Equal(t, []matching.Result{{DesignerID: idA, Score: 61}}, results)

	ok := matching.ScorerFunc(func(context.Context, matching.Brief, []matching.Designer) ([]matching.Result, error) {
		return []matching.Result{{DesignerID: idB, Score: 90}}, nil
	})
	results, err = matching.NewFallbackScorer(ok, backup, nil).
		Score(context.Background(), brief(), []matching.Designer{{ID: idA}})
	require.NoError(t, err)
	assert.Equal(t, idB, results[0].DesignerID)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	s, err := matching.NewFromConfig(context.Background(), matching.DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &matching.HeuristicScorer{}, s)

	cfg := matching.DefaultConfig()
	cfg.Provider = matching.ProviderOpenAI
	_, err = matching.NewFromConfig(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, matching.ErrInvalidAPIKey)

	cfg.OpenAIAPIKey = "sk-test"
	s, err = matching.NewFromConfig(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &matching.FallbackScorer{}, s)

	cfg.Provider = "llama"
	_, err = matching.NewFromConfig(context.Background(), cfg, nil)
	assert.ErrorIs(t, err, matching.ErrUnknownProvider)
}
