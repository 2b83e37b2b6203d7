package notify

// Config holds the addresses and links used in notification emails.
type Config struct {
	AdminEmail  string `env:"ADMIN_EMAIL"`
	AppURL      string `env:"APP_URL" envDefault:"http://localhost:3000"`
	ProductName string `env:"PRODUCT_NAME" envDefault:"OneDesigner"`
}
