package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/validator"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "client@example.com",
		Subject:  "Your matches are ready",
		BodyHTML: "<p>3 designers matched your brief</p>",
		Tag:      "match_found",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
		field  string
	}{
		{"valid", func(*email.SendEmailParams) {}, ""},
		{"missing recipient", func(p *email.SendEmailParams) { p.SendTo = "" }, "send_to"},
		{"bad recipient", func(p *email.SendEmailParams) { p.SendTo = "not-an-email" }, "send_to"},
		{"missing subject", func(p *email.SendEmailParams) { p.Subject = " " }, "subject"},
		{"missing body", func(p *email.SendEmailParams) { p.BodyHTML = "" }, "body_html"},
		{"bad reply-to", func(p *email.SendEmailParams) { p.ReplyTo = "nope" }, "reply_to"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, email.ErrInvalidParams)

			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.True(t, verrs.Has(tt.field))
		})
	}
}

func TestSanitizeTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "match_found", email.SanitizeTag("match_found"))
	assert.Equal(t, "brief_2024_v1-a", email.SanitizeTag("brief 2024.v1-a"))
}

func TestDevSender(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "emails")
	sender := email.NewDevSender(dir)

	p := validParams()
	p.Tags = map[string]string{"brief_id": "b1"}
	require.NoError(t, sender.SendEmail(context.Background(), p))
	require.NoError(t, sender.SendEmail(context.Background(), p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	var jsonFile string
	for _, e := range entries {
		assert.Contains(t, e.Name(), "match_found")
		if strings.HasSuffix(e.Name(), ".json") {
			jsonFile = filepath.Join(dir, e.Name())
		}
	}

	raw, err := os.ReadFile(jsonFile)
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "client@example.com", meta["send_to"])
	assert.Equal(t, map[string]any{"brief_id": "b1"}, meta["tags"])
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	t.Parallel()

	sender := email.NewDevSender(t.TempDir())
	err := sender.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}

func TestDevSender_SubjectFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := validParams()
	p.Tag = ""
	p.Subject = "Hello / World!"
	require.NoError(t, email.NewDevSender(dir).SendEmail(context.Background(), p))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[0].Name(), "hello__world")
}
