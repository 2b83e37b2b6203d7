package smtp_test

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/integration/email/smtp"
)

func validConfig() smtp.Config {
	return smtp.Config{
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "user",
		Password:     "secret",
		TLSMode:      smtp.TLSModeSTARTTLS,
		SenderEmail:  "hello@onedesigner.app",
		SenderName:   "OneDesigner",
		SupportEmail: "support@onedesigner.app",
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*smtp.Config)
		ok     bool
	}{
		{"valid", func(*smtp.Config) {}, true},
		{"anonymous relay", func(c *smtp.Config) { c.Username, c.Password = "", "" }, true},
		{"missing host", func(c *smtp.Config) { c.Host = "" }, false},
		{"bad port", func(c *smtp.Config) { c.Port = 70000 }, false},
		{"username without password", func(c *smtp.Config) { c.Password = "" }, false},
		{"bad tls mode", func(c *smtp.Config) { c.TLSMode = "ssl" }, false},
		{"bad sender", func(c *smtp.Config) { c.SenderEmail = "x" }, false},
		{"bad support", func(c *smtp.Config) { c.SupportEmail = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			_, err := smtp.New(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, email.ErrInvalidConfig)
			}
		})
	}

	assert.Panics(t, func() { smtp.MustNewClient(smtp.Config{}) })
}

// fakeServer accepts one SMTP session and returns the DATA section.
func fakeServer(t *testing.T) (port int, data <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		reply("220 localhost ESMTP")

		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250 localhost")
			case strings.HasPrefix(cmd, "MAIL"), strings.HasPrefix(cmd, "RCPT"), strings.HasPrefix(cmd, "RSET"):
				reply("250 OK")
			case cmd == "DATA":
				reply("354 go ahead")
				var sb strings.Builder
				for {
					l, err := r.ReadString('\n')
					if err != nil {
						return
					}
					if l == ".\r\n" {
						break
					}
					sb.WriteString(l)
				}
				out <- sb.String()
				reply("250 queued")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, out
}

func TestClient_SendEmail(t *testing.T) {
	t.Parallel()

	port, data := fakeServer(t)

	cfg := validConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.Username, cfg.Password = "", ""
	cfg.TLSMode = smtp.TLSModePlain

	client, err := smtp.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "designer@example.com",
		Subject:  "New project request",
		BodyHTML: "<p>A client wants to work with you</p>",
		BodyText: "A client wants to work with you",
		Tag:      "project_request",
	})
	require.NoError(t, err)

	select {
	case msg := <-data:
		assert.Contains(t, msg, "To: designer@example.com")
		assert.Contains(t, msg, "Reply-To: support@onedesigner.app")
		assert.Contains(t, msg, "Subject: New project request")
		assert.Contains(t, msg, "X-Tag: project_request")
		assert.Contains(t, msg, "multipart/alternative")
		assert.Contains(t, msg, "text/plain")
		assert.Contains(t, msg, "text/html")
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestClient_SendEmailConnectionError(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	cfg := validConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.TLSMode = smtp.TLSModePlain

	client, err := smtp.New(cfg)
	require.NoError(t, err)

	err = client.SendEmail(context.Background(), email.SendEmailParams{
		SendTo: "designer@example.com", Subject: "x", BodyHTML: "<p>x</p>",
	})
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestClient_SendEmailValidatesAndHonoursContext(t *testing.T) {
	t.Parallel()

	client := smtp.MustNewClient(validConfig())

	err := client.SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = client.SendEmail(ctx, email.SendEmailParams{
		SendTo: "designer@example.com", Subject: "x", BodyHTML: "<p>x</p>",
	})
	assert.ErrorIs(t, err, context.Canceled)
}
