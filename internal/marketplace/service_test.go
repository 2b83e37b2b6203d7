package marketplace_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/validator"
	"github.com/onedesigner/onedesigner/internal/marketplace"
	"github.com/onedesigner/onedesigner/internal/matching"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	if n.fail {
		return errors.New("provider down")
	}
	return nil
}

func (n *recordingNotifier) Events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.events...)
}

func (n *recordingNotifier) DesignerApplicationReceived(context.Context, marketplace.Designer) error {
	return n.record("application_received")
}

func (n *recordingNotifier) AdminNewApplication(context.Context, marketplace.Designer) error {
	return n.record("admin_new_application")
}

func (n *recordingNotifier) DesignerApproved(context.Context, marketplace.Designer) error {
	return n.record("designer_approved")
}

func (n *recordingNotifier) DesignerRejected(_ context.Context, d marketplace.Designer) error {
	return n.record("designer_rejected:" + d.RejectionReason)
}

func (n *recordingNotifier) ClientWelcome(context.Context, marketplace.Client) error {
	return n.record("client_welcome")
}

func (n *recordingNotifier) MatchesReady(context.Context, marketplace.Client, marketplace.Brief, int) error {
	return n.record("matches_ready")
}

func (n *recordingNotifier) ProjectRequestReceived(context.Context, marketplace.Designer, marketplace.Brief, marketplace.ProjectRequest) error {
	return n.record("request_received")
}

func (n *recordingNotifier) ProjectRequestApproved(context.Context, marketplace.Client, marketplace.Designer, marketplace.ProjectRequest) error {
	return n.record("request_approved")
}

func (n *recordingNotifier) ProjectRequestDeclined(context.Context, marketplace.Client, marketplace.Designer, marketplace.ProjectRequest) error {
	return n.record("request_declined")
}

func (n *recordingNotifier) ProjectRequestExpired(context.Context, marketplace.Client, marketplace.Designer, marketplace.ProjectRequest) error {
	return n.record("request_expired")
}

func (n *recordingNotifier) CreditsPurchased(context.Context, marketplace.Client, marketplace.CreditPurchase) error {
	return n.record("credits_purchased")
}

type fixture struct {
	svc      *marketplace.Service
	repo     *marketplace.MemoryRepository
	notifier *recordingNotifier
	now      time.Time
	clock    *time.Time
}

func newFixture(t *testing.T, opts ...marketplace.Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:     marketplace.NewMemoryRepository(),
		notifier: &recordingNotifier{},
		now:      time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	f.clock = &f.now
	base := []marketplace.Option{
		marketplace.WithNotifier(f.notifier),
		marketplace.WithClock(func() time.Time { return *f.clock }),
	}
	svc, err := marketplace.NewService(f.repo, append(base, opts...)...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func application(email string) marketplace.DesignerApplication {
	return marketplace.DesignerApplication{
		Email:           email,
		FirstName:       "Ada",
		LastName:        "Park",
		Title:           "Brand designer",
		Timezone:        "Europe/Berlin",
		YearsExperience: 7,
		Styles:          []string{"Minimal", " bold ", "minimal"},
		Industries:      []string{"fintech"},
		ProjectTypes:    []string{"branding"},
		Tools:           []string{"figma"},
		Availability:    matching.AvailabilityNow,
		HourlyRateMin:   60,
		HourlyRateMax:   120,
		PortfolioURL:    "https://ada.design",
		Phone:           "+49 30 1234",
	}
}

func briefInput() marketplace.BriefInput {
	return marketplace.BriefInput{
		ProjectType:   "Branding",
		Industry:      "fintech",
		Styles:        []string{"minimal", "bold"},
		Timeline:      matching.TimelineWeeks,
		BudgetMin:     50,
		BudgetMax:     150,
		Description:   "Rebrand for a payments startup",
		RequiredTools: []string{"Figma"},
	}
}

// seed creates a client with credits, one approved designer and a matched brief.
func (f *fixture) seed(t *testing.T, credits int) (*marketplace.Client, *marketplace.Designer, []marketplace.MatchView) {
	t.Helper()
	ctx := context.Background()

	client, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "Founder@Startup.io", Name: "Sam"})
	require.NoError(t, err)
	if credits > 0 {
		_, _, err = f.svc.AddCredits(ctx, client.ID, "order-seed", credits, credits*1000)
		require.NoError(t, err)
	}

	designer, err := f.svc.ApplyDesigner(ctx, application("ada@studio.com"))
	require.NoError(t, err)
	_, err = f.svc.ApproveDesigner(ctx, designer.ID)
	require.NoError(t, err)

	brief, err := f.svc.SubmitBrief(ctx, client.ID, briefInput())
	require.NoError(t, err)
	matches, err := f.svc.FindMatches(ctx, client.ID, brief.ID)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	return client, designer, matches
}

func TestNewService_NilRepository(t *testing.T) {
	t.Parallel()
	_, err := marketplace.NewService(nil)
	assert.ErrorIs(t, err, marketplace.ErrRepositoryNil)
}

func TestRegisterClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: " Founder@Startup.io ", Name: "Sam"})
	require.NoError(t, err)
	assert.Equal(t, "founder@startup.io", c.Email)
	assert.Zero(t, c.MatchCredits)
	assert.Equal(t, []string{"client_welcome"}, f.notifier.Events())

	_, err = f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "founder@startup.io", Name: "Sam"})
	assert.ErrorIs(t, err, marketplace.ErrAlreadyExists)

	_, err = f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "nope"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("email"))
	assert.True(t, verrs.Has("name"))
}

func TestApplyDesigner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	d, err := f.svc.ApplyDesigner(ctx, application("Ada@Studio.com"))
	require.NoError(t, err)
	assert.Equal(t, marketplace.DesignerPending, d.Status)
	assert.Equal(t, "ada@studio.com", d.Email)
	assert.Equal(t, []string{"minimal", "bold"}, d.Styles)
	assert.Equal(t, []string{"application_received", "admin_new_application"}, f.notifier.Events())

	bad := application("other@studio.com")
	bad.Availability = "someday"
	bad.HourlyRateMin = 200
	bad.Styles = nil
	bad.PortfolioURL = "ada.design"
	_, err = f.svc.ApplyDesigner(ctx, bad)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, field := range []string{"availability", "hourly_rate_min", "styles", "portfolio_url"} {
		assert.True(t, verrs.Has(field), field)
	}
}

func TestReviewDesigner(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.ApplyDesigner(ctx, application("a@studio.com"))
	require.NoError(t, err)
	b, err := f.svc.ApplyDesigner(ctx, application("b@studio.com"))
	require.NoError(t, err)

	approved, err := f.svc.ApproveDesigner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.DesignerApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	assert.Equal(t, f.now, *approved.ApprovedAt)

	_, err = f.svc.RejectDesigner(ctx, b.ID, "  ")
	assert.True(t, validator.IsValidationError(err))

	rejected, err := f.svc.RejectDesigner(ctx, b.ID, "Portfolio link is broken")
	require.NoError(t, err)
	assert.Equal(t, "Portfolio link is broken", rejected.RejectionReason)
	assert.Contains(t, f.notifier.Events(), "designer_rejected:Portfolio link is broken")

	_, err = f.svc.ApproveDesigner(ctx, b.ID)
	assert.ErrorIs(t, err, marketplace.ErrDesignerNotPending)
	_, err = f.svc.ApproveDesigner(ctx, uuid.New())
	assert.ErrorIs(t, err, marketplace.ErrNotFound)

	pending, err := f.svc.ListDesigners(ctx, marketplace.DesignerPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
	all, err := f.svc.ListDesigners(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	_, err = f.svc.ListDesigners(ctx, "archived")
	assert.True(t, validator.IsValidationError(err))
}

func TestFindMatches(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, designer, matches := f.seed(t, 0)
	m := matches[0]
	assert.Equal(t, designer.ID, m.DesignerID)
	assert.Equal(t, marketplace.MatchPending, m.Status)
	assert.GreaterOrEqual(t, m.Score, 50)
	assert.NotEmpty(t, m.Reasons)
	assert.Nil(t, m.Contact, "contact stays hidden until unlock")
	assert.Equal(t, "Brand designer", m.Designer.Title)
	assert.Contains(t, f.notifier.Events(), "matches_ready")

	brief, err := f.repo.GetBrief(ctx, m.BriefID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.BriefMatched, brief.Status)

	again, err := f.svc.FindMatches(ctx, client.ID, m.BriefID)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, m.ID, again[0].ID, "matched brief is not rescored")

	_, err = f.svc.FindMatches(ctx, uuid.New(), m.BriefID)
	assert.ErrorIs(t, err, marketplace.ErrForbidden)
}

func TestFindMatches_RanksAndFilters(t *testing.T) {
	t.Parallel()

	scorer := matching.ScorerFunc(func(_ context.Context, _ matching.Brief, ds []matching.Designer) ([]matching.Result, error) {
		out := make([]matching.Result, len(ds))
		for i, d := range ds {
			out[i] = matching.Result{DesignerID: d.ID, Score: 40 + 15*i}
		}
		return out, nil
	})
	f := newFixture(t,
		marketplace.WithScorer(scorer),
		marketplace.WithMatchingConfig(matching.Config{MinScore: 50, MaxMatches: 2}),
	)
	ctx := context.Background()

	for _, email := range []string{"a@s.io", "b@s.io", "c@s.io", "d@s.io"} {
		d, err := f.svc.ApplyDesigner(ctx, application(email))
		require.NoError(t, err)
		f.now = f.now.Add(time.Minute)
		_, err = f.svc.ApproveDesigner(ctx, d.ID)
		require.NoError(t, err)
	}
	client, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "c@client.io", Name: "C"})
	require.NoError(t, err)
	brief, err := f.svc.SubmitBrief(ctx, client.ID, briefInput())
	require.NoError(t, err)

	matches, err := f.svc.FindMatches(ctx, client.ID, brief.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 85, matches[0].Score)
	assert.Equal(t, 70, matches[1].Score)
}

func TestFindMatches_NoDesigners(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "c@client.io", Name: "C"})
	require.NoError(t, err)
	brief, err := f.svc.SubmitBrief(ctx, client.ID, briefInput())
	require.NoError(t, err)

	matches, err := f.svc.FindMatches(ctx, client.ID, brief.ID)
	require.NoError(t, err)
	assert.Empty(t, matches)

	stored, err := f.repo.GetBrief(ctx, brief.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.BriefActive, stored.Status)
}

func TestSubmitBrief_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	in := briefInput()
	in.Timeline = "yesterday"
	in.BudgetMin = 500
	_, err := f.svc.SubmitBrief(ctx, uuid.New(), in)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("timeline"))
	assert.True(t, verrs.Has("budget_min"))

	_, err = f.svc.SubmitBrief(ctx, uuid.New(), briefInput())
	assert.ErrorIs(t, err, marketplace.ErrNotFound)
}

func TestUnlockMatch(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, designer, matches := f.seed(t, 2)
	matchID := matches[0].ID

	res, err := f.svc.UnlockMatch(ctx, client.ID, matchID)
	require.NoError(t, err)
	assert.False(t, res.AlreadyUnlocked)
	assert.Equal(t, 1, res.CreditsRemaining)
	assert.Equal(t, designer.Email, res.Contact.Email)
	assert.Equal(t, marketplace.MatchUnlocked, res.Match.Status)

	again, err := f.svc.UnlockMatch(ctx, client.ID, matchID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyUnlocked)
	assert.Equal(t, 1, again.CreditsRemaining, "second unlock is free")

	_, err = f.svc.UnlockMatch(ctx, uuid.New(), matchID)
	assert.ErrorIs(t, err, marketplace.ErrForbidden)
	_, err = f.svc.UnlockMatch(ctx, client.ID, uuid.New())
	assert.ErrorIs(t, err, marketplace.ErrNotFound)

	views, err := f.svc.BriefMatches(ctx, client.ID, matches[0].BriefID)
	require.NoError(t, err)
	require.NotNil(t, views[0].Contact)
	assert.Equal(t, "Ada", views[0].Contact.FirstName)
}

func TestUnlockMatch_InsufficientCredits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	client, _, matches := f.seed(t, 0)
	_, err := f.svc.UnlockMatch(context.Background(), client.ID, matches[0].ID)
	assert.ErrorIs(t, err, marketplace.ErrInsufficientCredits)
}

func TestUnlockMatch_ConcurrentSpendsOneCredit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, _, matches := f.seed(t, 1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.UnlockMatch(ctx, client.ID, matches[0].ID)
		}()
	}
	wg.Wait()

	got, err := f.repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Zero(t, got.MatchCredits)
	unlocks, err := f.repo.ListUnlocksByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestFindMatches_ConcurrentCallsStoreOnce(t *testing.T) {
	t.Parallel()

	scorer := matching.ScorerFunc(func(_ context.Context, _ matching.Brief, ds []matching.Designer) ([]matching.Result, error) {
		time.Sleep(50 * time.Millisecond)
		out := make([]matching.Result, len(ds))
		for i, d := range ds {
			out[i] = matching.Result{DesignerID: d.ID, Score: 90}
		}
		return out, nil
	})
	f := newFixture(t, marketplace.WithScorer(scorer))
	ctx := context.Background()

	d, err := f.svc.ApplyDesigner(ctx, application("ada@studio.com"))
	require.NoError(t, err)
	_, err = f.svc.ApproveDesigner(ctx, d.ID)
	require.NoError(t, err)
	client, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "c@client.io", Name: "C"})
	require.NoError(t, err)
	brief, err := f.svc.SubmitBrief(ctx, client.ID, briefInput())
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		results [2][]marketplace.MatchView
		errs    [2]error
	)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = f.svc.FindMatches(ctx, client.ID, brief.ID)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
	}
	assert.Equal(t, results[0][0].ID, results[1][0].ID)

	stored, err := f.repo.ListMatchesByBrief(ctx, brief.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestProjectRequestFlow(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, designer, matches := f.seed(t, 1)
	matchID := matches[0].ID

	_, err := f.svc.SendProjectRequest(ctx, client.ID, matchID, "Let's talk")
	assert.ErrorIs(t, err, marketplace.ErrMatchLocked)

	_, err = f.svc.UnlockMatch(ctx, client.ID, matchID)
	require.NoError(t, err)

	_, err = f.svc.SendProjectRequest(ctx, client.ID, matchID, "   ")
	assert.True(t, validator.IsValidationError(err))

	req, err := f.svc.SendProjectRequest(ctx, client.ID, matchID, "Let's talk about our rebrand")
	require.NoError(t, err)
	assert.Equal(t, marketplace.RequestPending, req.Status)
	assert.Equal(t, f.now.Add(72*time.Hour), req.ExpiresAt)
	assert.Contains(t, f.notifier.Events(), "request_received")

	_, err = f.svc.SendProjectRequest(ctx, client.ID, matchID, "Hello again")
	assert.ErrorIs(t, err, marketplace.ErrRequestExists)

	views, err := f.svc.DesignerRequests(ctx, designer.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].Client)
	assert.Equal(t, "branding", views[0].Brief.ProjectType)

	_, err = f.svc.RespondToProjectRequest(ctx, uuid.New(), req.ID, true, "")
	assert.ErrorIs(t, err, marketplace.ErrForbidden)

	res, err := f.svc.RespondToProjectRequest(ctx, designer.ID, req.ID, true, "Happy to help")
	require.NoError(t, err)
	assert.Equal(t, marketplace.RequestApproved, res.Request.Status)
	require.NotNil(t, res.Client)
	assert.Equal(t, "founder@startup.io", res.Client.Email)
	assert.Contains(t, f.notifier.Events(), "request_approved")

	_, err = f.svc.RespondToProjectRequest(ctx, designer.ID, req.ID, false, "")
	assert.ErrorIs(t, err, marketplace.ErrRequestNotPending)

	views, err = f.svc.DesignerRequests(ctx, designer.ID)
	require.NoError(t, err)
	require.NotNil(t, views[0].Client)

	// A new request is allowed once the previous one is settled.
	next, err := f.svc.SendProjectRequest(ctx, client.ID, matchID, "Second project")
	require.NoError(t, err)
	res, err = f.svc.RespondToProjectRequest(ctx, designer.ID, next.ID, false, "Fully booked")
	require.NoError(t, err)
	assert.Nil(t, res.Client)
	assert.Contains(t, f.notifier.Events(), "request_declined")
}

func TestExpireProjectRequests(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, designer, matches := f.seed(t, 1)
	_, err := f.svc.UnlockMatch(ctx, client.ID, matches[0].ID)
	require.NoError(t, err)
	req, err := f.svc.SendProjectRequest(ctx, client.ID, matches[0].ID, "Are you free?")
	require.NoError(t, err)

	n, err := f.svc.ExpireProjectRequests(ctx, f.now.Add(71*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	f.now = f.now.Add(72 * time.Hour)
	_, err = f.svc.RespondToProjectRequest(ctx, designer.ID, req.ID, true, "")
	assert.ErrorIs(t, err, marketplace.ErrRequestExpired)

	n, err = f.svc.ExpireProjectRequests(ctx, f.now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, f.notifier.Events(), "request_expired")

	stored, err := f.repo.GetProjectRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, marketplace.RequestExpired, stored.Status)

	n, err = f.svc.ExpireProjectRequests(ctx, f.now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddCredits(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, err := f.svc.RegisterClient(ctx, marketplace.RegisterClientInput{Email: "c@client.io", Name: "C"})
	require.NoError(t, err)

	p, applied, err := f.svc.AddCredits(ctx, client.ID, "order-1", 5, 4900)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 5, p.Credits)

	_, applied, err = f.svc.AddCredits(ctx, client.ID, "order-1", 5, 4900)
	require.NoError(t, err)
	assert.False(t, applied, "replayed order")

	got, err := f.repo.GetClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.MatchCredits)

	_, _, err = f.svc.AddCredits(ctx, client.ID, "", 5, 100)
	assert.ErrorIs(t, err, marketplace.ErrInvalidCreditPurchase)
	_, _, err = f.svc.AddCredits(ctx, uuid.New(), "order-2", 5, 100)
	assert.ErrorIs(t, err, marketplace.ErrNotFound)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.CreditsSold)
	assert.Equal(t, 4900, stats.RevenueCents)
	assert.Equal(t, 1, stats.Clients)

	events := f.notifier.Events()
	assert.Equal(t, "credits_purchased", events[len(events)-1])
}

func TestClientDashboard(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	client, designer, matches := f.seed(t, 3)
	_, err := f.svc.UnlockMatch(ctx, client.ID, matches[0].ID)
	require.NoError(t, err)

	dash, err := f.svc.ClientDashboard(ctx, client.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, dash.Client.MatchCredits)
	require.Len(t, dash.Briefs, 1)
	require.Len(t, dash.Briefs[0].Matches, 1)
	require.Len(t, dash.UnlockedDesigners, 1)
	assert.Equal(t, designer.ID, dash.UnlockedDesigners[0].ID)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Designers[marketplace.DesignerApproved])
	assert.Equal(t, 1, stats.Unlocks)
	assert.Equal(t, 1, stats.Matches)
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.notifier.fail = true

	_, err := f.svc.RegisterClient(context.Background(), marketplace.RegisterClientInput{Email: "c@client.io", Name: "C"})
	assert.NoError(t, err)
}
