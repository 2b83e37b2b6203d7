package matching

import "time"

// Scorer providers selectable through Config.Provider.
const (
	ProviderHeuristic = "heuristic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

// Weights sets how much each criterion contributes to a score.
type Weights struct {
	Style       float64 `env:"MATCHING_WEIGHT_STYLE" envDefault:"0.30" json:"style"`
	Industry    float64 `env:"MATCHING_WEIGHT_INDUSTRY" envDefault:"0.20" json:"industry"`
	ProjectType float64 `env:"MATCHING_WEIGHT_PROJECT_TYPE" envDefault:"0.20" json:"project_type"`
	Budget      float64 `env:"MATCHING_WEIGHT_BUDGET" envDefault:"0.10" json:"budget"`
	Timeline    float64 `env:"MATCHING_WEIGHT_TIMELINE" envDefault:"0.10" json:"timeline"`
	Tools       float64 `env:"MATCHING_WEIGHT_TOOLS" envDefault:"0.05" json:"tools"`
	Timezone    float64 `env:"MATCHING_WEIGHT_TIMEZONE" envDefault:"0.05" json:"timezone"`
}

// DefaultWeights returns the production weighting.
func DefaultWeights() Weights {
	return Weights{
		Style:       0.30,
		Industry:    0.20,
		ProjectType: 0.20,
		Budget:      0.10,
		Timeline:    0.10,
		Tools:       0.05,
		Timezone:    0.05,
	}
}

func (w Weights) total() float64 {
	return w.Style + w.Industry + w.ProjectType + w.Budget + w.Timeline + w.Tools + w.Timezone
}

// Config holds matching settings.
type Config struct {
	Provider    string `env:"MATCHING_PROVIDER" envDefault:"heuristic"`
	Weights     Weights
	MinScore    int           `env:"MATCHING_MIN_SCORE" envDefault:"50"`
	MaxMatches  int           `env:"MATCHING_MAX_MATCHES" envDefault:"3"`
	Temperature float64       `env:"MATCHING_TEMPERATURE" envDefault:"0.2"`
	Timeout     time.Duration `env:"MATCHING_TIMEOUT" envDefault:"30s"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
}

// DefaultConfig returns the defaults used when no environment is set.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderHeuristic,
		Weights:     DefaultWeights(),
		MinScore:    50,
		MaxMatches:  3,
		Temperature: 0.2,
		Timeout:     30 * time.Second,
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
	}
}
