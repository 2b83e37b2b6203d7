package matching

import (
	"context"
	"log/slog"

	"github.com/onedesigner/onedesigner/core/logger"
)

// FallbackScorer tries Primary and falls back to Fallback when it fails.
type FallbackScorer struct {
	primary  Scorer
	fallback Scorer
	log      *slog.Logger
}

// NewFallbackScorer wraps primary with fallback. A nil log discards.
func NewFallbackScorer(primary, fallback Scorer, log *slog.Logger) *FallbackScorer {
	if log == nil {
		log = logger.NewNop()
	}
	return &FallbackScorer{primary: primary, fallback: fallback, log: log}
}

// Score implements Scorer.
func (f *FallbackScorer) Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
	results, err := f.primary.Score(ctx, brief, designers)
	if err == nil {
		return results, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.log.WarnContext(ctx, "ai scoring failed, using heuristic",
		logger.Component("matching"),
		logger.Error(err),
		logger.Count("candidates", len(designers)),
	)
	return f.fallback.Score(ctx, brief, designers)
}
