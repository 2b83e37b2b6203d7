package postmark

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/mrz1836/postmark"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/validator"
)

// Client sends email through Postmark's transactional API.
type Client struct {
	api    *postmark.Client
	from   string
	config Config
}

// New validates cfg and builds a Postmark sender.
func New(cfg Config) (*Client, error) {
	switch {
	case cfg.ServerToken == "":
		return nil, fmt.Errorf("%w: postmark server token is required", email.ErrInvalidConfig)
	case cfg.AccountToken == "":
		return nil, fmt.Errorf("%w: postmark account token is required", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SenderEmail):
		return nil, fmt.Errorf("%w: sender email must be a valid address", email.ErrInvalidConfig)
	case !validator.IsEmail(cfg.SupportEmail):
		return nil, fmt.Errorf("%w: support email must be a valid address", email.ErrInvalidConfig)
	}

	api := postmark.NewClient(cfg.ServerToken, cfg.AccountToken)
	if cfg.BaseURL != "" {
		api.BaseURL = cfg.BaseURL
	}

	from := (&mail.Address{Name: cfg.SenderName, Address: cfg.SenderEmail}).String()
	return &Client{api: api, from: from, config: cfg}, nil
}

// MustNewClient is New that panics on invalid config.
func MustNewClient(cfg Config) *Client {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// SendEmail sends params with open and HTML link tracking. Reply-To
// defaults to the support address.
func (c *Client) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	replyTo := params.ReplyTo
	if replyTo == "" {
		replyTo = c.config.SupportEmail
	}

	resp, err := c.api.SendEmail(ctx, postmark.Email{
		From:       c.from,
		To:         params.SendTo,
		ReplyTo:    replyTo,
		Subject:    params.Subject,
		Tag:        params.Tag,
		HTMLBody:   params.BodyHTML,
		TextBody:   params.BodyText,
		Metadata:   params.Tags,
		TrackOpens: true,
		TrackLinks: "HtmlOnly",
	})
	if err != nil {
		return errors.Join(email.ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode != 0 {
		return errors.Join(email.ErrFailedToSendEmail,
			fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
