package email

import (
	"context"
	"errors"
	"regexp"

	"github.com/onedesigner/onedesigner/core/validator"
)

// EmailSender delivers a single email through a provider.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SenderFunc adapts a function to EmailSender.
type SenderFunc func(ctx context.Context, params SendEmailParams) error

func (f SenderFunc) SendEmail(ctx context.Context, params SendEmailParams) error {
	return f(ctx, params)
}

// SendEmailParams is one outgoing email. ReplyTo falls back to the provider's
// support address when empty. Tag names the email kind ("otp", "match_found")
// and is used for provider analytics and dev file names.
type SendEmailParams struct {
	SendTo   string            `json:"send_to"`
	Subject  string            `json:"subject"`
	BodyHTML string            `json:"body_html"`
	BodyText string            `json:"body_text,omitempty"`
	ReplyTo  string            `json:"reply_to,omitempty"`
	Tag      string            `json:"tag,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Validate checks recipient, subject and HTML body. The error wraps
// ErrInvalidParams and carries validator.ValidationErrors.
func (p SendEmailParams) Validate() error {
	rules := []validator.Rule{
		validator.Required("send_to", p.SendTo),
		validator.Email("send_to", p.SendTo),
		validator.Required("subject", p.Subject),
		validator.MaxLen("subject", p.Subject, 998),
		validator.Required("body_html", p.BodyHTML),
	}
	if p.ReplyTo != "" {
		rules = append(rules, validator.Email("reply_to", p.ReplyTo))
	}
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

var tagCharset = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeTag replaces characters providers reject in tag names and values.
func SanitizeTag(s string) string {
	return tagCharset.ReplaceAllString(s, "_")
}
