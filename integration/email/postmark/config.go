package postmark

// Config holds Postmark credentials and sender identity.
type Config struct {
	ServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	AccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail  string `env:"SENDER_EMAIL,required"`
	SenderName   string `env:"SENDER_NAME" envDefault:"OneDesigner"`
	SupportEmail string `env:"SUPPORT_EMAIL,required"`
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string `env:"POSTMARK_BASE_URL"`
}
