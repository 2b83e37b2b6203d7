// Package matching scores approved designers against a client brief.
//
// Scores combine weighted criteria: style 0.30, industry 0.20, project type
// 0.20, budget 0.10, timeline/availability 0.10, tools 0.05 and timezone
// 0.05. HeuristicScorer computes them locally. OpenAIScorer and GeminiScorer
// send the brief, the anonymous candidate profiles and the weights to a
// model and parse a JSON answer:
//
//	{"matches":[{"designer_id":"...","score":87,"reasons":["..."]}]}
//
// Scores from a model are clamped to 0..100 and ids it invents are dropped.
// FallbackScorer keeps matching available when the model call fails.
//
// Rank turns raw results into the matches shown to a client: results below
// Config.MinScore are dropped, the rest ordered by score and cut to
// Config.MaxMatches.
package matching
