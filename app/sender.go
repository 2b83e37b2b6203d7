package app

import (
	"fmt"

	"github.com/onedesigner/onedesigner/core/config"
	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/integration/email/postmark"
	"github.com/onedesigner/onedesigner/integration/email/resend"
	"github.com/onedesigner/onedesigner/integration/email/smtp"
)

// Email providers selectable with EMAIL_PROVIDER.
const (
	ProviderResend   = "resend"
	ProviderPostmark = "postmark"
	ProviderSMTP     = "smtp"
	ProviderDev      = "dev"
)

// newSender builds the provider named in cfg, reading its credentials
// from the environment.
func newSender(cfg email.Config) (email.EmailSender, error) {
	switch cfg.Provider {
	case ProviderResend:
		var rc resend.Config
		if err := config.Load(&rc); err != nil {
			return nil, err
		}
		return resend.New(rc)
	case ProviderPostmark:
		var pc postmark.Config
		if err := config.Load(&pc); err != nil {
			return nil, err
		}
		return postmark.New(pc)
	case ProviderSMTP:
		var sc smtp.Config
		if err := config.Load(&sc); err != nil {
			return nil, err
		}
		return smtp.New(sc)
	case ProviderDev, "":
		return email.NewDevSender(cfg.DevDir), nil
	}
	return nil, fmt.Errorf("%w: unknown email provider %q", email.ErrInvalidConfig, cfg.Provider)
}
