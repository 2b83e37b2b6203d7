package matching

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NewFromConfig builds the scorer selected by cfg.Provider. AI providers are
// wrapped in a FallbackScorer over the heuristic and bounded by cfg.Timeout.
func NewFromConfig(ctx context.Context, cfg Config, log *slog.Logger) (Scorer, error) {
	heuristic := NewHeuristicScorer(cfg.Weights)

	var primary Scorer
	switch cfg.Provider {
	case "", ProviderHeuristic:
		return heuristic, nil
	case ProviderOpenAI:
		s, err := NewOpenAIScorer(cfg.OpenAIAPIKey,
			WithOpenAIModel(cfg.OpenAIModel),
			WithOpenAIBaseURL(cfg.OpenAIBaseURL),
			WithOpenAITemperature(cfg.Temperature),
			WithOpenAIWeights(cfg.Weights),
		)
		if err != nil {
			return nil, err
		}
		primary = s
	case ProviderGemini:
		s, err := NewGeminiScorer(ctx, cfg.GeminiAPIKey,
			WithGeminiModel(cfg.GeminiModel),
			WithGeminiTemperature(cfg.Temperature),
			WithGeminiWeights(cfg.Weights),
		)
		if err != nil {
			return nil, err
		}
		primary = s
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	return NewFallbackScorer(withTimeout(primary, cfg.Timeout), heuristic, log), nil
}

func withTimeout(s Scorer, d time.Duration) Scorer {
	if d <= 0 {
		return s
	}
	return ScorerFunc(func(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return s.Score(ctx, brief, designers)
	})
}
