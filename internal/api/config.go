package api

import "time"

// Config configures the HTTP API.
type Config struct {
	// AdminToken guards /api/admin and /api/hooks. Admin routes answer 401
	// while it is empty.
	AdminToken  string   `env:"ADMIN_TOKEN"`
	CORSOrigins []string `env:"API_CORS_ORIGINS" envSeparator:","`
	// PublicRateLimit is the number of public POST requests one IP may make
	// per PublicRateWindow.
	PublicRateLimit  int           `env:"API_PUBLIC_RATE_LIMIT" envDefault:"20"`
	PublicRateWindow time.Duration `env:"API_PUBLIC_RATE_WINDOW" envDefault:"1m"`
	MaxBodyBytes     int64         `env:"API_MAX_BODY_BYTES" envDefault:"1048576"`
}
