package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onedesigner/onedesigner/core/logger"
	"github.com/onedesigner/onedesigner/core/validator"
	"github.com/onedesigner/onedesigner/internal/matching"
)

// Config holds marketplace rules.
type Config struct {
	RequestTTL time.Duration `env:"PROJECT_REQUEST_TTL" envDefault:"72h"`
}

// DefaultRequestTTL is how long a designer has to answer a project request.
const DefaultRequestTTL = 72 * time.Hour

// Service implements the marketplace use cases.
type Service struct {
	repo       Repository
	scorer     matching.Scorer
	matchCfg   matching.Config
	notifier   Notifier
	log        *slog.Logger
	now        func() time.Time
	requestTTL time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithScorer sets the matcher. Defaults to the heuristic scorer.
func WithScorer(s matching.Scorer) Option {
	return func(svc *Service) {
		if s != nil {
			svc.scorer = s
		}
	}
}

// WithMatchingConfig sets the min score and max matches used by FindMatches.
func WithMatchingConfig(cfg matching.Config) Option {
	return func(svc *Service) { svc.matchCfg = cfg }
}

func WithNotifier(n Notifier) Option {
	return func(svc *Service) {
		if n != nil {
			svc.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

func WithRequestTTL(d time.Duration) Option {
	return func(svc *Service) {
		if d > 0 {
			svc.requestTTL = d
		}
	}
}

// NewService creates a Service over repo.
func NewService(repo Repository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}
	matchCfg := matching.DefaultConfig()
	s := &Service{
		repo:       repo,
		scorer:     matching.NewHeuristicScorer(matchCfg.Weights),
		matchCfg:   matchCfg,
		notifier:   nopNotifier{},
		log:        logger.NewNop(),
		now:        time.Now,
		requestTTL: DefaultRequestTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("marketplace"))
	return s, nil
}

// RegisterClient creates a client account with no credits.
func (s *Service) RegisterClient(ctx context.Context, in RegisterClientInput) (*Client, error) {
	in.normalize()
	if err := validate(&in); err != nil {
		return nil, err
	}

	c := &Client{
		ID:        uuid.New(),
		Email:     in.Email,
		Name:      in.Name,
		Company:   in.Company,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.InfoContext(ctx, "client registered", logger.UserID(c.ID.String()))
	s.notify(ctx, "client_welcome", func() error { return s.notifier.ClientWelcome(ctx, *c) })
	return c, nil
}

// ApplyDesigner stores a pending designer application, confirms it to the
// designer and alerts the admin.
func (s *Service) ApplyDesigner(ctx context.Context, in DesignerApplication) (*Designer, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	d := &Designer{
		ID:              uuid.New(),
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Title:           in.Title,
		City:            strings.TrimSpace(in.City),
		Country:         strings.TrimSpace(in.Country),
		Timezone:        strings.TrimSpace(in.Timezone),
		YearsExperience: in.YearsExperience,
		Styles:          in.Styles,
		Industries:      in.Industries,
		ProjectTypes:    in.ProjectTypes,
		Tools:           in.Tools,
		Availability:    in.Availability,
		HourlyRateMin:   in.HourlyRateMin,
		HourlyRateMax:   in.HourlyRateMax,
		PortfolioURL:    strings.TrimSpace(in.PortfolioURL),
		Bio:             strings.TrimSpace(in.Bio),
		Phone:           strings.TrimSpace(in.Phone),
		Status:          DesignerPending,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.CreateDesigner(ctx, d); err != nil {
		return nil, fmt.Errorf("create designer: %w", err)
	}

	s.log.InfoContext(ctx, "designer applied", logger.UserID(d.ID.String()))
	s.notify(ctx, "designer_application_received", func() error {
		return s.notifier.DesignerApplicationReceived(ctx, *d)
	})
	s.notify(ctx, "admin_new_application", func() error { return s.notifier.AdminNewApplication(ctx, *d) })
	return d, nil
}

// ListDesigners returns designers with status, or all of them when empty.
func (s *Service) ListDesigners(ctx context.Context, status DesignerStatus) ([]Designer, error) {
	if status != "" {
		err := validator.Apply(validator.OneOf("status", string(status),
			string(DesignerPending), string(DesignerApproved), string(DesignerRejected)))
		if err != nil {
			return nil, err
		}
	}
	return s.repo.ListDesigners(ctx, status)
}

// ApproveDesigner makes a pending designer matchable and emails them.
func (s *Service) ApproveDesigner(ctx context.Context, id uuid.UUID) (*Designer, error) {
	d, err := s.repo.ReviewDesigner(ctx, id, DesignerApproved, "", s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("approve designer: %w", err)
	}
	s.log.InfoContext(ctx, "designer approved", logger.UserID(id.String()))
	s.notify(ctx, "designer_approved", func() error { return s.notifier.DesignerApproved(ctx, *d) })
	return d, nil
}

// RejectDesigner rejects a pending designer and emails them the reason.
func (s *Service) RejectDesigner(ctx context.Context, id uuid.UUID, reason string) (*Designer, error) {
	reason = strings.TrimSpace(reason)
	if err := validator.Apply(
		validator.Required("reason", reason),
		validator.MaxLen("reason", reason, 1000),
	); err != nil {
		return nil, err
	}

	d, err := s.repo.ReviewDesigner(ctx, id, DesignerRejected, reason, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("reject designer: %w", err)
	}
	s.log.InfoContext(ctx, "designer rejected", logger.UserID(id.String()))
	s.notify(ctx, "designer_rejected", func() error { return s.notifier.DesignerRejected(ctx, *d) })
	return d, nil
}

// Stats returns the admin dashboard counters.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

// SubmitBrief stores an active brief for clientID.
func (s *Service) SubmitBrief(ctx context.Context, clientID uuid.UUID, in BriefInput) (*Brief, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetClient(ctx, clientID); err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	b := &Brief{
		ID:                uuid.New(),
		ClientID:          clientID,
		ProjectType:       in.ProjectType,
		Industry:          in.Industry,
		Styles:            in.Styles,
		Timeline:          in.Timeline,
		BudgetMin:         in.BudgetMin,
		BudgetMax:         in.BudgetMax,
		Description:       in.Description,
		RequiredTools:     in.RequiredTools,
		PreferredTimezone: strings.TrimSpace(in.PreferredTimezone),
		Status:            BriefActive,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.repo.CreateBrief(ctx, b); err != nil {
		return nil, fmt.Errorf("create brief: %w", err)
	}
	s.log.InfoContext(ctx, "brief submitted", slog.String("brief_id", b.ID.String()))
	return b, nil
}

// FindMatches scores approved designers for a brief and stores the best
// ones. A brief that already has matches returns them without rescoring.
func (s *Service) FindMatches(ctx context.Context, clientID, briefID uuid.UUID) ([]MatchView, error) {
	brief, err := s.ownedBrief(ctx, clientID, briefID)
	if err != nil {
		return nil, err
	}
	switch brief.Status {
	case BriefClosed:
		return nil, ErrBriefClosed
	case BriefMatched:
		return s.matchViews(ctx, briefID)
	}

	designers, err := s.repo.ListDesigners(ctx, DesignerApproved)
	if err != nil {
		return nil, fmt.Errorf("list designers: %w", err)
	}
	if len(designers) == 0 {
		s.log.WarnContext(ctx, "no approved designers to match", slog.String("brief_id", briefID.String()))
		return []MatchView{}, nil
	}

	candidates := make([]matching.Designer, len(designers))
	for i, d := range designers {
		candidates[i] = d.candidate()
	}

	start := time.Now()
	results, err := s.scorer.Score(ctx, brief.matchingBrief(), candidates)
	if err != nil {
		return nil, fmt.Errorf("score designers: %w", err)
	}
	ranked := matching.Rank(results, s.matchCfg)

	now := s.now().UTC()
	matches := make([]Match, len(ranked))
	for i, r := range ranked {
		matches[i] = Match{
			ID:         uuid.New(),
			BriefID:    briefID,
			DesignerID: r.DesignerID,
			Score:      r.Score,
			Reasons:    r.Reasons,
			Status:     MatchPending,
			CreatedAt:  now,
		}
	}
	if len(matches) > 0 {
		saved, err := s.repo.SaveMatches(ctx, briefID, matches)
		if err != nil {
			return nil, fmt.Errorf("save matches: %w", err)
		}
		if !saved {
			// Another call matched the brief first.
			return s.matchViews(ctx, briefID)
		}
	}

	s.log.InfoContext(ctx, "matches computed",
		slog.String("brief_id", briefID.String()),
		logger.Count("candidates", len(candidates)),
		logger.Count("matches", len(matches)),
		logger.Elapsed(start),
	)

	if len(matches) > 0 {
		if client, err := s.repo.GetClient(ctx, clientID); err == nil {
			s.notify(ctx, "matches_ready", func() error {
				return s.notifier.MatchesReady(ctx, *client, *brief, len(matches))
			})
		}
	}
	return s.matchViews(ctx, briefID)
}

// BriefMatches returns the stored matches of a client's brief.
func (s *Service) BriefMatches(ctx context.Context, clientID, briefID uuid.UUID) ([]MatchView, error) {
	if _, err := s.ownedBrief(ctx, clientID, briefID); err != nil {
		return nil, err
	}
	return s.matchViews(ctx, briefID)
}

// UnlockMatch spends one credit to reveal a matched designer's contact.
// Unlocking the same match again is free.
func (s *Service) UnlockMatch(ctx context.Context, clientID, matchID uuid.UUID) (*UnlockResult, error) {
	if _, _, err := s.ownedMatch(ctx, clientID, matchID); err != nil {
		return nil, err
	}

	unlock, created, err := s.repo.UnlockMatch(ctx, clientID, matchID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("unlock match: %w", err)
	}

	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	designer, err := s.repo.GetDesigner(ctx, unlock.DesignerID)
	if err != nil {
		return nil, fmt.Errorf("get designer: %w", err)
	}
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	if created {
		s.log.InfoContext(ctx, "match unlocked",
			logger.UserID(clientID.String()),
			slog.String("match_id", matchID.String()),
			logger.Count("credits_remaining", client.MatchCredits),
		)
	}
	return &UnlockResult{
		Match:            *match,
		Contact:          designer.Contact(),
		CreditsRemaining: client.MatchCredits,
		AlreadyUnlocked:  !created,
	}, nil
}

// SendProjectRequest asks an unlocked designer to work with the client.
func (s *Service) SendProjectRequest(ctx context.Context, clientID, matchID uuid.UUID, message string) (*ProjectRequest, error) {
	message = strings.TrimSpace(message)
	if err := validator.Apply(
		validator.Required("message", message),
		validator.MaxLen("message", message, 2000),
	); err != nil {
		return nil, err
	}

	match, brief, err := s.ownedMatch(ctx, clientID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Unlocked() {
		return nil, ErrMatchLocked
	}

	now := s.now().UTC()
	r := &ProjectRequest{
		ID:         uuid.New(),
		MatchID:    matchID,
		ClientID:   clientID,
		DesignerID: match.DesignerID,
		Message:    message,
		Status:     RequestPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.requestTTL),
	}
	if err := s.repo.CreateProjectRequest(ctx, r); err != nil {
		return nil, fmt.Errorf("create project request: %w", err)
	}

	s.log.InfoContext(ctx, "project request sent",
		slog.String("request_id", r.ID.String()),
		slog.String("match_id", matchID.String()),
	)
	if designer, err := s.repo.GetDesigner(ctx, match.DesignerID); err == nil {
		s.notify(ctx, "project_request_received", func() error {
			return s.notifier.ProjectRequestReceived(ctx, *designer, *brief, *r)
		})
	}
	return r, nil
}

// RespondToProjectRequest records the designer's answer. Approving reveals
// the client's contact; the client is emailed either way.
func (s *Service) RespondToProjectRequest(ctx context.Context, designerID, requestID uuid.UUID, approve bool, message string) (*RespondResult, error) {
	message = strings.TrimSpace(message)
	if err := validator.Apply(validator.MaxLen("message", message, 2000)); err != nil {
		return nil, err
	}

	req, err := s.repo.GetProjectRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get project request: %w", err)
	}
	if req.DesignerID != designerID {
		return nil, ErrForbidden
	}
	now := s.now().UTC()
	if req.Status == RequestPending && !now.Before(req.ExpiresAt) {
		return nil, ErrRequestExpired
	}

	status := RequestDeclined
	if approve {
		status = RequestApproved
	}
	req, err = s.repo.RespondProjectRequest(ctx, requestID, status, message, now)
	if err != nil {
		return nil, fmt.Errorf("respond to project request: %w", err)
	}

	client, err := s.repo.GetClient(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	designer, err := s.repo.GetDesigner(ctx, designerID)
	if err != nil {
		return nil, fmt.Errorf("get designer: %w", err)
	}

	s.log.InfoContext(ctx, "project request answered",
		slog.String("request_id", requestID.String()),
		slog.String("status", string(status)),
	)

	result := &RespondResult{Request: *req}
	if approve {
		contact := client.Contact()
		result.Client = &contact
		s.notify(ctx, "project_request_approved", func() error {
			return s.notifier.ProjectRequestApproved(ctx, *client, *designer, *req)
		})
	} else {
		s.notify(ctx, "project_request_declined", func() error {
			return s.notifier.ProjectRequestDeclined(ctx, *client, *designer, *req)
		})
	}
	return result, nil
}

// ExpireProjectRequests expires pending requests past their deadline and
// tells the affected clients. It returns how many expired.
func (s *Service) ExpireProjectRequests(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ExpireProjectRequests(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire project requests: %w", err)
	}

	for _, r := range expired {
		client, err := s.repo.GetClient(ctx, r.ClientID)
		if err != nil {
			s.log.WarnContext(ctx, "expired request without client", slog.String("request_id", r.ID.String()), logger.Error(err))
			continue
		}
		designer, err := s.repo.GetDesigner(ctx, r.DesignerID)
		if err != nil {
			s.log.WarnContext(ctx, "expired request without designer", slog.String("request_id", r.ID.String()), logger.Error(err))
			continue
		}
		s.notify(ctx, "project_request_expired", func() error {
			return s.notifier.ProjectRequestExpired(ctx, *client, *designer, r)
		})
	}
	if len(expired) > 0 {
		s.log.InfoContext(ctx, "project requests expired", logger.Count("expired", len(expired)))
	}
	return len(expired), nil
}

// AddCredits credits a client for a paid order. Replaying the same order
// id changes nothing and returns applied=false.
func (s *Service) AddCredits(ctx context.Context, clientID uuid.UUID, orderID string, credits, amountCents int) (*CreditPurchase, bool, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || credits <= 0 || amountCents < 0 {
		return nil, false, ErrInvalidCreditPurchase
	}

	p := &CreditPurchase{
		ID:          uuid.New(),
		ClientID:    clientID,
		OrderID:     orderID,
		Credits:     credits,
		AmountCents: amountCents,
		CreatedAt:   s.now().UTC(),
	}
	applied, err := s.repo.AddCredits(ctx, p)
	if err != nil {
		return nil, false, fmt.Errorf("add credits: %w", err)
	}
	if !applied {
		s.log.InfoContext(ctx, "duplicate credit order ignored", slog.String("order_id", orderID))
		return p, false, nil
	}

	s.log.InfoContext(ctx, "credits added",
		logger.UserID(clientID.String()),
		slog.String("order_id", orderID),
		logger.Count("credits", credits),
	)
	if client, err := s.repo.GetClient(ctx, clientID); err == nil {
		s.notify(ctx, "credits_purchased", func() error { return s.notifier.CreditsPurchased(ctx, *client, *p) })
	}
	return p, true, nil
}

// DesignerRequests lists a designer's project requests, newest first.
func (s *Service) DesignerRequests(ctx context.Context, designerID uuid.UUID) ([]DesignerRequestView, error) {
	if _, err := s.repo.GetDesigner(ctx, designerID); err != nil {
		return nil, fmt.Errorf("get designer: %w", err)
	}
	reqs, err := s.repo.ListProjectRequestsByDesigner(ctx, designerID)
	if err != nil {
		return nil, fmt.Errorf("list project requests: %w", err)
	}

	views := make([]DesignerRequestView, 0, len(reqs))
	for _, r := range reqs {
		match, err := s.repo.GetMatch(ctx, r.MatchID)
		if err != nil {
			return nil, fmt.Errorf("get match: %w", err)
		}
		brief, err := s.repo.GetBrief(ctx, match.BriefID)
		if err != nil {
			return nil, fmt.Errorf("get brief: %w", err)
		}
		view := DesignerRequestView{Request: r, Brief: *brief}
		if r.Status == RequestApproved {
			if client, err := s.repo.GetClient(ctx, r.ClientID); err == nil {
				contact := client.Contact()
				view.Client = &contact
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// ClientDashboard returns credits, briefs with matches and unlocked designers.
func (s *Service) ClientDashboard(ctx context.Context, clientID uuid.UUID) (*Dashboard, error) {
	client, err := s.repo.GetClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	briefs, err := s.repo.ListBriefsByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list briefs: %w", err)
	}

	dash := &Dashboard{
		Client:            *client,
		Briefs:            make([]BriefMatches, 0, len(briefs)),
		UnlockedDesigners: []DesignerContact{},
	}
	for _, b := range briefs {
		views, err := s.matchViews(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		dash.Briefs = append(dash.Briefs, BriefMatches{Brief: b, Matches: views})
	}

	unlocks, err := s.repo.ListUnlocksByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	seen := make(map[uuid.UUID]bool, len(unlocks))
	for _, u := range unlocks {
		if seen[u.DesignerID] {
			continue
		}
		seen[u.DesignerID] = true
		d, err := s.repo.GetDesigner(ctx, u.DesignerID)
		if err != nil {
			return nil, fmt.Errorf("get designer: %w", err)
		}
		dash.UnlockedDesigners = append(dash.UnlockedDesigners, d.Contact())
	}
	return dash, nil
}

func (s *Service) ownedBrief(ctx context.Context, clientID, briefID uuid.UUID) (*Brief, error) {
	brief, err := s.repo.GetBrief(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("get brief: %w", err)
	}
	if brief.ClientID != clientID {
		return nil, ErrForbidden
	}
	return brief, nil
}

func (s *Service) ownedMatch(ctx context.Context, clientID, matchID uuid.UUID) (*Match, *Brief, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, fmt.Errorf("get match: %w", err)
	}
	brief, err := s.ownedBrief(ctx, clientID, match.BriefID)
	if err != nil {
		return nil, nil, err
	}
	return match, brief, nil
}

func (s *Service) matchViews(ctx context.Context, briefID uuid.UUID) ([]MatchView, error) {
	matches, err := s.repo.ListMatchesByBrief(ctx, briefID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		d, err := s.repo.GetDesigner(ctx, m.DesignerID)
		if err != nil {
			return nil, fmt.Errorf("get designer: %w", err)
		}
		view := MatchView{Match: m, Designer: d.Profile()}
		if m.Unlocked() {
			contact := d.Contact()
			view.Contact = &contact
		}
		views = append(views, view)
	}
	return views, nil
}

// notify runs a best-effort notification and logs its failure.
func (s *Service) notify(ctx context.Context, event string, fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, context.Canceled) {
		s.log.ErrorContext(ctx, "notification failed", logger.Event(event), logger.Error(err))
	}
}
