package payments

// Config configures the Lemon Squeezy webhook.
type Config struct {
	WebhookSecret string `env:"LEMONSQUEEZY_WEBHOOK_SECRET"`
	// CreditPacks maps a product variant id to the credits it grants,
	// e.g. "123456:3,123457:10".
	CreditPacks    map[string]int `env:"LEMONSQUEEZY_CREDIT_PACKS"`
	AcceptTestMode bool           `env:"LEMONSQUEEZY_ACCEPT_TEST_MODE" envDefault:"true"`
	MaxBodyBytes   int64          `env:"LEMONSQUEEZY_MAX_BODY_BYTES" envDefault:"1048576"`
}
