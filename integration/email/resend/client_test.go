package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/integration/email/resend"
)

func validConfig() resend.Config {
	return resend.Config{
		APIKey:       "re_test",
		SenderEmail:  "hello@onedesigner.app",
		SenderName:   "OneDesigner",
		SupportEmail: "support@onedesigner.app",
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*resend.Config)
	}{
		{"missing key", func(c *resend.Config) { c.APIKey = "" }},
		{"bad sender", func(c *resend.Config) { c.SenderEmail = "hello" }},
		{"bad support", func(c *resend.Config) { c.SupportEmail = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := resend.New(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}

	assert.Panics(t, func() { resend.MustNewClient(resend.Config{}) })
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	var (
		got  map[string]any
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.BaseURL = srv.URL
	client, err := resend.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "client@example.com",
		Subject:  "Your login code",
		BodyHTML: "<p>123456</p>",
		BodyText: "123456",
		Tag:      "otp",
		Tags:     map[string]string{"client id": "c-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test", auth)
	assert.Equal(t, `"OneDesigner" <hello@onedesigner.app>`, got["from"])
	assert.Equal(t, []any{"client@example.com"}, got["to"])
	assert.Equal(t, "Your login code", got["subject"])
	assert.Equal(t, "<p>123456</p>", got["html"])
	assert.Equal(t, "123456", got["text"])
	assert.Equal(t, "support@onedesigner.app", got["reply_to"])
	assert.Equal(t, []any{
		map[string]any{"name": "category", "value": "otp"},
		map[string]any{"name": "client_id", "value": "c-1"},
	}, got["tags"])
}

func TestClient_SendEmailAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"statusCode":429,"name":"rate_limit_exceeded","message":"Too many requests"}`))
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.BaseURL = srv.URL
	client, err := resend.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo: "client@example.com", Subject: "x", BodyHTML: "<p>x</p>",
	})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestClient_SendEmailValidates(t *testing.T) {
	t.Parallel()

	err := resend.MustNewClient(validConfig()).SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}
