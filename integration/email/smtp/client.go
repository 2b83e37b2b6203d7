package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/validator"
)

// Client sends email through an SMTP relay. It dials per message and is
// safe for concurrent use.
type Client struct {
	dialer  *gomail.Dialer
	config  Config
	timeout time.Duration
}

// New validates cfg and builds an SMTP sender.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.Host == "":
		return nil, fmt.Errorf("%w: smtp host is required", email.ErrInvalidConfig)
	case cfg.Port <= 0 || cfg.Port > 65535:
		return nil, fmt.Errorf("%w: smtp port must be between 1 and 65535", email.ErrInvalidConfig)
	case cfg.Username != "" && cfg.Password == "":
		return nil, fmt.Errorf("%w: smtp password is required with a username", email.ErrInvalidConfig)
	case cfg.TLSMode != TLSModeSTARTTLS && cfg.TLSMode != TLSModeTLS && cfg.TLSMode != TLSModePlain:
		return nil, fmt.Errorf("%w: smtp tls mode must be starttls, tls or plain", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SenderEmail):
		return nil, fmt.Errorf("%w: sender email must be a valid address", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SupportEmail):
		return nil, fmt.Errorf("%w: support email must be a valid address", email.ErrInvalidConfig)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.TLSMode == TLSModeTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{dialer: d, config: cfg, timeout: timeout}, nil
}

// MustNewClient is New that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// SendEmail delivers params as multipart/alternative when a text body is
// present. gomail has no context support, so cancellation abandons the
// dial rather than interrupting it.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}

	msg := c.buildMessage(params)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return errors.Join(email.ErrFailedToSendEmail, err)
		}
		return nil
	case <-ctx.Done():
		return errors.Join(email.ErrFailedToSendEmail, ctx.Err())
	}
}

func (c *Client) buildMessage(params email.SendEmailParams) *gomail.Message {
	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = c.config.SupportEmail
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", c.config.SenderEmail, c.config.SenderName)
	m.SetHeader("To", params.SendTo)
	m.SetHeader("Reply-To", replyTo)
	m.SetHeader("Subject", params.Subject)
	m.SetDateHeader("Date", time.Now())
	if params.Tag != "" {
		m.SetHeader("X-Tag", email.SanitizeTag(params.Tag))
	}

	if params.BodyText != "" {
		m.SetBody("text/plain", params.BodyText)
		m.AddAlternative("text/html", params.BodyHTML)
	} else {
		m.SetBody("text/html", params.BodyHTML)
	}
	return m
}
