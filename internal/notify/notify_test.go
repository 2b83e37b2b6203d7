package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/email"
	"github.com/onedesigner/onedesigner/core/email/templates"
	"github.com/onedesigner/onedesigner/core/queue"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/notify"
)

type sent struct {
	params email.SendEmailParams
	html   string
	opts   int
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (f *fakeMailer) QueueTemplate(ctx context.Context, params email.SendEmailParams, c templ.Component, opts ...queue.EnqueueOption) error {
	if f.err != nil {
		return f.err
	}
	html, err := templates.Render(ctx, c)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{params: params, html: html, opts: len(opts)})
	return nil
}

func (f *fakeMailer) last(t *testing.T) sent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newNotifier(cfg notify.Config) (*notify.Notifier, *fakeMailer) {
	m := &fakeMailer{}
	if cfg.AppURL == "" {
		cfg.AppURL = "https://onedesigner.test/"
	}
	return notify.New(m, cfg), m
}

func designer() marketplace.Designer {
	return marketplace.Designer{
		ID:              uuid.New(),
		Email:           "anna@example.com",
		FirstName:       "anna",
		LastName:        "lee",
		Title:           "Brand designer",
		City:            "Lisbon",
		Country:         "Portugal",
		YearsExperience: 7,
		Styles:          []string{"minimal", "bold"},
		Availability:    "immediate",
		PortfolioURL:    "https://anna.design",
	}
}

func client() marketplace.Client {
	return marketplace.Client{
		ID:           uuid.New(),
		Email:        "bob@acme.test",
		Name:         "Bob McKay",
		MatchCredits: 5,
	}
}

func TestDesignerEmails(t *testing.T) {
	t.Parallel()

	n, m := newNotifier(notify.Config{AdminEmail: "admin@onedesigner.test"})
	ctx := context.Background()
	d := designer()

	require.NoError(t, n.DesignerApplicationReceived(ctx, d))
	got := m.last(t)
	assert.Equal(t, "anna@example.com", got.params.SendTo)
	assert.Equal(t, notify.TagDesignerApplication, got.params.Tag)
	assert.Contains(t, got.params.BodyText, "Hi Anna,")
	assert.Contains(t, got.html, "minimal, bold")

	require.NoError(t, n.AdminNewApplication(ctx, d))
	got = m.last(t)
	assert.Equal(t, "admin@onedesigner.test", got.params.SendTo)
	assert.Equal(t, "New designer application: Anna Lee", got.params.Subject)
	assert.Contains(t, got.html, "https://onedesigner.test/admin/designers/"+d.ID.String())
	assert.Contains(t, got.html, "Lisbon, Portugal")

	require.NoError(t, n.DesignerApproved(ctx, d))
	assert.Equal(t, notify.TagDesignerApproved, m.last(t).params.Tag)

	d.RejectionReason = "Portfolio needs more case studies"
	require.NoError(t, n.DesignerRejected(ctx, d))
	got = m.last(t)
	assert.Equal(t, notify.TagDesignerRejected, got.params.Tag)
	assert.Contains(t, got.html, "Portfolio needs more case studies")
}

func TestAdminAlertSkippedWithoutAddress(t *testing.T) {
	t.Parallel()

	n, m := newNotifier(notify.Config{})
	require.NoError(t, n.AdminNewApplication(context.Background(), designer()))
	assert.Empty(t, m.sent)
}

func TestClientEmails(t *testing.T) {
	t.Parallel()

	n, m := newNotifier(notify.Config{})
	ctx := context.Background()
	c := client()
	brief := marketplace.Brief{ID: uuid.New(), ProjectType: "Logo", Industry: "Fintech", Timeline: "asap", BudgetMin: 50, BudgetMax: 90}

	require.NoError(t, n.ClientWelcome(ctx, c))
	assert.Contains(t, m.last(t).params.BodyText, "Hi Bob,")

	require.NoError(t, n.MatchesReady(ctx, c, brief, 1))
	got := m.last(t)
	assert.Equal(t, "1 designer matched to your brief", got.params.Subject)
	assert.Equal(t, 1, got.opts)
	assert.Contains(t, got.html, "/client/briefs/"+brief.ID.String())

	require.NoError(t, n.MatchesReady(ctx, c, brief, 3))
	assert.Equal(t, "3 designers matched to your brief", m.last(t).params.Subject)

	p := marketplace.CreditPurchase{OrderID: "ord_1", Credits: 3, AmountCents: 4900}
	require.NoError(t, n.CreditsPurchased(ctx, c, p))
	got = m.last(t)
	assert.Equal(t, "Receipt: 3 match credits", got.params.Subject)
	assert.Contains(t, got.html, "$49.00")
	assert.Contains(t, got.html, "5 credits")
}

func TestProjectRequestEmails(t *testing.T) {
	t.Parallel()

	n, m := newNotifier(notify.Config{})
	ctx := context.Background()
	c := client()
	d := designer()
	brief := marketplace.Brief{ProjectType: "Website", Industry: "Health", Timeline: "1-2_weeks", BudgetMin: 60, BudgetMax: 100}
	r := marketplace.ProjectRequest{
		ID:        uuid.New(),
		Message:   "Can you start next week",
		ExpiresAt: time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	require.NoError(t, n.ProjectRequestReceived(ctx, d, brief, r))
	got := m.last(t)
	assert.Equal(t, d.Email, got.params.SendTo)
	assert.Equal(t, "New project request: Website", got.params.Subject)
	assert.Contains(t, got.html, "Can you start next week")
	assert.Contains(t, got.html, "$60-$100/h")
	assert.Contains(t, got.html, "Mar 4, 2026 10:00 UTC")

	r.ResponseMessage = "Happy to help"
	require.NoError(t, n.ProjectRequestApproved(ctx, c, d, r))
	got = m.last(t)
	assert.Equal(t, c.Email, got.params.SendTo)
	assert.Equal(t, "Anna Lee accepted your project request", got.params.Subject)
	assert.Contains(t, got.html, "anna@example.com")
	assert.Contains(t, got.html, "Happy to help")

	r.ResponseMessage = ""
	require.NoError(t, n.ProjectRequestDeclined(ctx, c, d, r))
	assert.Equal(t, notify.TagProjectRequestDecline, m.last(t).params.Tag)

	require.NoError(t, n.ProjectRequestExpired(ctx, c, d, r))
	got = m.last(t)
	assert.Equal(t, "Your request to Anna expired", got.params.Subject)
}

func TestLoginCode(t *testing.T) {
	t.Parallel()

	n, m := newNotifier(notify.Config{})
	require.NoError(t, n.LoginCode(context.Background(), "bob@acme.test", "482913", 10*time.Minute))

	got := m.last(t)
	assert.Equal(t, notify.TagLoginCode, got.params.Tag)
	assert.Contains(t, got.params.Subject, "482913")
	assert.Contains(t, got.params.BodyText, "10 minutes")
	assert.Contains(t, got.html, "482913")
}

func TestQueueErrorIsReturned(t *testing.T) {
	t.Parallel()

	m := &fakeMailer{err: email.ErrQueueUnavailable}
	n := notify.New(m, notify.Config{})

	err := n.ClientWelcome(context.Background(), client())
	require.Error(t, err)
	assert.True(t, errors.Is(err, email.ErrQueueUnavailable))
	assert.Contains(t, err.Error(), notify.TagClientWelcome)
}
