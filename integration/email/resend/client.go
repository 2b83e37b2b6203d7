package resend

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/mail"
	"net/url"
	"slices"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/validator"
)

// Client sends email through the Resend API.
type Client struct {
	api     *resend.Client
	from    string
	replyTo string
}

// New validates cfg and builds a Resend sender.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.APIKey == "":
		return nil, fmt.Errorf("%w: resend api key is required", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SenderEmail):
		return nil, fmt.Errorf("%w: sender email must be a valid address", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SupportEmail):
		return nil, fmt.Errorf("%w: support email must be a valid address", email.ErrInvalidConfig)
	}

	api := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: base url: %v", email.ErrInvalidConfig, err)
		}
		api.BaseURL = u
	}

	return &Client{
		api:     api,
		from:    (&mail.Address{Name: cfg.SenderName, Address: cfg.SenderEmail}).String(),
		replyTo: cfg.SupportEmail,
	}, nil
}

// MustNewClient is New that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// SendEmail sends params. Tag and Tags become Resend tags with names and
// values reduced to the characters Resend accepts.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = c.replyTo
	}

	req := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{params.SendTo},
		Subject: params.Subject,
		Html:    params.BodyHTML,
		Text:    params.BodyText,
		ReplyTo: replyTo,
		Tags:    tags(params),
	}

	if _, err := c.api.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	return nil
}

func tags(params email.SendEmailParams) []resend.Tag {
	var out []resend.Tag
	if params.Tag != "" {
		out = append(out, resend.Tag{Name: "category", Value: email.SanitizeTag(params.Tag)})
	}
	for _, k := range slices.Sorted(maps.Keys(params.Tags)) {
		out = append(out, resend.Tag{Name: email.SanitizeTag(k), Value: email.SanitizeTag(params.Tags[k])})
	}
	return out
}
