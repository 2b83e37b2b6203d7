package resend

// Config holds Resend credentials and sender identity.
type Config struct {
	APIKey       string `env:"RESEND_API_KEY,required"`
	SenderEmail  string `env:"SENDER_EMAIL,required"`
	SenderName   string `env:"SENDER_NAME" envDefault:"OneDesigner"`
	SupportEmail string `env:"SUPPORT_EMAIL,required"`
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string `env:"RESEND_BASE_URL"`
}
