package app_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/app"
	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/core/server"
	"github.com/onedesigner/onedesigner/internal/api"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/matching"
	"github.com/onedesigner/onedesigner/internal/notify"
	"github.com/onedesigner/onedesigner/internal/payments"
)

type outbox struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
}

func (o *outbox) SendEmail(_ context.Context, p email.SendEmailParams) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, p)
	return nil
}

func (o *outbox) tags() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	tags := make([]string, 0, len(o.sent))
	for _, p := range o.sent {
		tags = append(tags, p.Tag)
	}
	return tags
}

func testConfig(t *testing.T) app.Config {
	t.Helper()

	qcfg := queue.DefaultConfig()
	qcfg.PollInterval = 10 * time.Millisecond
	qcfg.CheckInterval = 50 * time.Millisecond

	ecfg := email.DefaultConfig()
	ecfg.DevDir = t.TempDir()
	ecfg.RatePerSecond = 100

	srv := server.DefaultConfig()
	srv.Addr = "127.0.0.1:0"
	srv.ShutdownTimeout = time.Second

	return app.Config{
		AppName:             "onedesigner-test",
		Env:                 "test",
		LogLevel:            "error",
		ExpireRequestsEvery: time.Minute,
		TaskRetention:       time.Hour,
		Server:              srv,
		Queue:               qcfg,
		Email:               ecfg,
		Matching:            matching.DefaultConfig(),
		Marketplace:         marketplace.Config{RequestTTL: 72 * time.Hour},
		Notify:              notify.Config{AppURL: "https://onedesigner.test", ProductName: "OneDesigner"},
		Payments:            payments.Config{MaxBodyBytes: 1 << 20, AcceptTestMode: true},
		API:                 api.Config{AdminToken: "secret", PublicRateLimit: 20, PublicRateWindow: time.Minute},
	}
}

func newApp(t *testing.T, cfg app.Config, box *outbox) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg,
		app.WithLogger(logger.NewNop()),
		app.WithEmailSender(box),
	)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewInMemory(t *testing.T) {
	t.Parallel()

	a := newApp(t, testConfig(t), &outbox{})

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	tasks := a.Queue().Scheduler().ListTasks()
	assert.Len(t, tasks, 1, "purge task only runs on Postgres storage")

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/webhooks/lemonsqueezy", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "webhook is disabled without a secret")
}

func TestNewWithWebhook(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Payments.WebhookSecret = "whsec"
	cfg.Payments.CreditPacks = map[string]int{"101": 3}
	a := newApp(t, cfg, &outbox{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/lemonsqueezy", bytes.NewBufferString(`{}`))
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewUnknownEmailProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Email.Provider = "carrier-pigeon"
	_, err := app.New(context.Background(), cfg, app.WithLogger(logger.NewNop()))
	require.Error(t, err)
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestNewRejectsNilOptions(t *testing.T) {
	t.Parallel()

	_, err := app.New(context.Background(), testConfig(t), app.WithLogger(nil))
	assert.Error(t, err)
	_, err = app.New(context.Background(), testConfig(t), app.WithEmailSender(nil))
	assert.Error(t, err)
	_, err = app.New(context.Background(), testConfig(t), app.WithScorer(nil))
	assert.Error(t, err)
}

func TestRunDeliversQueuedEmail(t *testing.T) {
	t.Parallel()

	box := &outbox{}
	a := newApp(t, testConfig(t), box)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	_, err := a.Marketplace().RegisterClient(ctx, marketplace.RegisterClientInput{Email: "ann@acme.test", Name: "Ann"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, tag := range box.tags() {
			if tag == notify.TagClientWelcome {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}
