package postmark_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/integration/email/postmark"
)

func validConfig() postmark.Config {
	return postmark.Config{
		ServerToken:  "server-token",
		AccountToken: "account-token",
		SenderEmail:  "hello@onedesigner.app",
		SenderName:   "OneDesigner",
		SupportEmail: "support@onedesigner.app",
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*postmark.Config)
	}{
		{"missing server token", func(c *postmark.Config) { c.ServerToken = "" }},
		{"missing account token", func(c *postmark.Config) { c.AccountToken = "" }},
		{"bad sender", func(c *postmark.Config) { c.SenderEmail = "nope" }},
		{"missing support", func(c *postmark.Config) { c.SupportEmail = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := postmark.New(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}

	_, err := postmark.New(validConfig())
	require.NoError(t, err)
	assert.Panics(t, func() { postmark.MustNewClient(postmark.Config{}) })
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/email", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"client@example.com","SubmittedAt":"2025-01-01T00:00:00Z","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.BaseURL = srv.URL
	client, err := postmark.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "client@example.com",
		Subject:  "Your matches",
		BodyHTML: "<p>hi</p>",
		Tag:      "match_found",
	})
	require.NoError(t, err)

	assert.Equal(t, "client@example.com", got["To"])
	assert.Equal(t, "Your matches", got["Subject"])
	assert.Equal(t, "support@onedesigner.app", got["ReplyTo"])
	assert.Equal(t, "match_found", got["Tag"])
}

func TestClient_SendEmailAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	defer srv.Close()

	cfg := validConfig()
	cfg.BaseURL = srv.URL
	client, err := postmark.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo: "client@example.com", Subject: "x", BodyHTML: "<p>x</p>",
	})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestClient_SendEmailValidates(t *testing.T) {
	t.Parallel()

	client := postmark.MustNewClient(validConfig())
	err := client.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
}
