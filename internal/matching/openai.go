package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIScorer asks an OpenAI chat model to score candidates.
type OpenAIScorer struct {
	client      openai.Client
	model       string
	temperature float64
	weights     Weights
}

// OpenAIOption configures an OpenAIScorer.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	model       string
	temperature float64
	weights     Weights
	reqOpts     []option.RequestOption
}

func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIConfig) {
		if model != "" {
			c.model = model
		}
	}
}

func WithOpenAITemperature(t float64) OpenAIOption {
	return func(c *openAIConfig) { c.temperature = t }
}

func WithOpenAIWeights(w Weights) OpenAIOption {
	return func(c *openAIConfig) { c.weights = w }
}

// WithOpenAIBaseURL points the client at a compatible endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) {
		if url != "" {
			c.reqOpts = append(c.reqOpts, option.WithBaseURL(url))
		}
	}
}

// WithOpenAIRequestOptions passes raw client options, e.g. retries.
func WithOpenAIRequestOptions(opts ...option.RequestOption) OpenAIOption {
	return func(c *openAIConfig) { c.reqOpts = append(c.reqOpts, opts...) }
}

// NewOpenAIScorer creates an OpenAI backed scorer.
func NewOpenAIScorer(apiKey string, opts ...OpenAIOption) (*OpenAIScorer, error) {
	if apiKey == "" {
		return nil, ErrInvalidAPIKey
	}
	cfg := openAIConfig{
		model:       "gpt-4o-mini",
		temperature: 0.2,
		weights:     DefaultWeights(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &OpenAIScorer{
		client:      openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, cfg.reqOpts...)...),
		model:       cfg.model,
		temperature: cfg.temperature,
		weights:     cfg.weights,
	}, nil
}

// Score implements Scorer.
func (s *OpenAIScorer) Score(ctx context.Context, brief Brief, designers []Designer) ([]Result, error) {
	if len(designers) == 0 {
		return nil, nil
	}
	system, user, err := buildPrompt(brief, designers, s.weights)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(s.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", ErrScoringFailed, err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.Join(ErrInvalidAIResponse, errors.New("openai returned no choices"))
	}
	return parseResponse(resp.Choices[0].Message.Content, designers)
}
