package matching

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const systemPrompt = `You match freelance designers to client project briefs for OneDesigner.
Score every candidate from 0 to 100 using the weighted criteria provided.
Answer with JSON only, in the form:
{"matches":[{"designer_id":"<id>","score":<0-100>,"reasons":["short reason", "..."]}]}
Give two to four concrete reasons per designer. Never invent designer ids.`

type promptInput struct {
	Weights    Weights    `json:"weights"`
	Brief      Brief      `json:"brief"`
	Candidates []Designer `json:"candidates"`
}

// buildPrompt returns the system and user messages for an AI scorer.
func buildPrompt(b Brief, designers []Designer, w Weights) (string, string, error) {
	payload, err := json.MarshalIndent(promptInput{Weights: w, Brief: b, Candidates: designers}, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshal prompt: %w", err)
	}
	user := "Score these candidates for the brief. Weights sum to 1.\n\n" + string(payload)
	return systemPrompt, user, nil
}

type aiResponse struct {
	Matches []struct {
		DesignerID string   `json:"designer_id"`
		Score      float64  `json:"score"`
		Reasons    []string `json:"reasons"`
	} `json:"matches"`
}

// parseResponse decodes model output, tolerating markdown code fences.
// Scores are clamped to 0..100; unknown or repeated designer ids are dropped.
func parseResponse(raw string, designers []Designer) ([]Result, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var resp aiResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAIResponse, err)
	}

	known := make(map[uuid.UUID]bool, len(designers))
	for _, d := range designers {
		known[d.ID] = true
	}

	results := make([]Result, 0, len(resp.Matches))
	seen := make(map[uuid.UUID]bool, len(resp.Matches))
	for _, m := range resp.Matches {
		id, err := uuid.Parse(m.DesignerID)
		if err != nil || !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		results = append(results, Result{
			DesignerID: id,
			Score:      clampScore(m.Score),
			Reasons:    m.Reasons,
		})
	}
	return results, nil
}
