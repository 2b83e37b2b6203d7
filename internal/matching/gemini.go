package matching

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiScorer asks a Gemini model to score candidates.
type GeminiScorer struct {
	client      *genai.Client
	model       string
	temperature float32
	weights     Weights
}

// GeminiOption configures a GeminiScorer.
type GeminiOption func(*geminiConfig)

type geminiConfig struct {
	model       string
	temperature float32
	weights     Weights
	baseURL     string
}

func WithGeminiModel(model string) GeminiOption {
	return func(c *geminiConfig) {
		if model != "" {
			c.model = model
		}
	}
}

func WithGeminiTemperature(t float64) GeminiOption {
	return func(c *geminiConfig) { c.temperature = float32(t) }
}

func WithGeminiWeights(w Weights) GeminiOption {
	return func(c *geminiConfig) { c.weights = w }
}

// WithGeminiBaseURL overrides the API endpoint, for tests and proxies.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(c *geminiConfig) { c.baseURL = url }
}

// NewGeminiScorer creates a Gemini API backed scorer.
func NewGeminiScorer(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiScorer, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	cfg := geminiConfig{
		model:       "gemini-2.0-flash",
		temperature: 0.2,
		weights:     DefaultWeights(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, errors.Join(ErrClientCreateFailed, err)
	}

	return &GeminiScorer{
		client:      client,
		model:       cfg.model,
		temperature: cfg.temperature,
		weights:     cfg.weights,
	}, nil
}

// Score implements Scorer.
func (s *GeminiScorer) Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
	if len(designers) == 0 {
		return nil, nil
	}
	system, user, err := buildPrompt(brief, designers, s.weights)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(user), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(s.temperature),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini: %w", ErrScoringFailed, err)
	}
	text := resp.Text()
	if text == "" {
		return nil, errors.Join(ErrInvalidAIResponse, errors.New("gemini returned no text"))
	}
	return parseResponse(text, designers)
}
