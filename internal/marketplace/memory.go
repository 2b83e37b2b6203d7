package marketplace

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository for development and tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*Client
	designers map[uuid.UUID]*Designer
	briefs    map[uuid.UUID]*Brief
	matches   map[uuid.UUID]*Match
	unlocks   map[uuid.UUID]*Unlock
	requests  map[uuid.UUID]*ProjectRequest
	purchases map[string]*CreditPurchase
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		clients:   make(map[uuid.UUID]*Client),
		designers: make(map[uuid.UUID]*Designer),
		briefs:    make(map[uuid.UUID]*Brief),
		matches:   make(map[uuid.UUID]*Match),
		unlocks:   make(map[uuid.UUID]*Unlock),
		requests:  make(map[uuid.UUID]*ProjectRequest),
		purchases: make(map[string]*CreditPurchase),
	}
}

func (m *MemoryRepository) CreateClient(_ context.Context, c *Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.clients {
		if strings.EqualFold(existing.Email, c.Email) {
			return ErrAlreadyExists
		}
	}
	cp := *c
	m.clients[c.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetClient(_ context.Context, id uuid.UUID) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOf(m.clients, id)
}

func (m *MemoryRepository) CreateDesigner(_ context.Context, d *Designer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.designers {
		if strings.EqualFold(existing.Email, d.Email) {
			return ErrAlreadyExists
		}
	}
	cp := *d
	m.designers[d.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetDesigner(_ context.Context, id uuid.UUID) (*Designer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOf(m.designers, id)
}

func (m *MemoryRepository) ListDesigners(_ context.Context, status DesignerStatus) ([]Designer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Designer, 0, len(m.designers))
	for _, d := range m.designers {
		if status == "" || d.Status == status {
			out = append(out, *d)
		}
	}
	slices.SortFunc(out, func(a, b Designer) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) ReviewDesigner(_ context.Context, id uuid.UUID, status DesignerStatus, reason string, at time.Time) (*Designer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.designers[id]
	if !ok {
		return nil, ErrNotFound
	}
	if d.Status != DesignerPending {
		return nil, ErrDesignerNotPending
	}
	d.Status = status
	if status == DesignerApproved {
		d.ApprovedAt = &at
	} else {
		d.RejectionReason = reason
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepository) CreateBrief(_ context.Context, b *Brief) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[b.ClientID]; !ok {
		return ErrNotFound
	}
	cp := *b
	m.briefs[b.ID] = &cp
	return nil
}

func (m *MemoryRepository) GetBrief(_ context.Context, id uuid.UUID) (*Brief, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOf(m.briefs, id)
}

func (m *MemoryRepository) ListBriefsByClient(_ context.Context, clientID uuid.UUID) ([]Brief, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Brief
	for _, b := range m.briefs {
		if b.ClientID == clientID {
			out = append(out, *b)
		}
	}
	slices.SortFunc(out, func(a, b Brief) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) SaveMatches(_ context.Context, briefID uuid.UUID, matches []Match) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.briefs[briefID]
	if !ok {
		return false, ErrNotFound
	}
	if b.Status != BriefActive {
		return false, nil
	}
	b.Status = BriefMatched
	for _, match := range matches {
		cp := match
		m.matches[match.ID] = &cp
	}
	return true, nil
}

func (m *MemoryRepository) GetMatch(_ context.Context, id uuid.UUID) (*Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOf(m.matches, id)
}

func (m *MemoryRepository) ListMatchesByBrief(_ context.Context, briefID uuid.UUID) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Match
	for _, match := range m.matches {
		if match.BriefID == briefID {
			out = append(out, *match)
		}
	}
	slices.SortFunc(out, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.DesignerID.String(), b.DesignerID.String())
	})
	return out, nil
}

func (m *MemoryRepository) UnlockMatch(_ context.Context, clientID, matchID uuid.UUID, at time.Time) (*Unlock, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.matches[matchID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if match.Unlocked() {
		for _, u := range m.unlocks {
			if u.MatchID == matchID {
				cp := *u
				return &cp, false, nil
			}
		}
	}

	client, ok := m.clients[clientID]
	if !ok {
		return nil, false, ErrNotFound
	}
	if client.MatchCredits <= 0 {
		return nil, false, ErrInsufficientCredits
	}

	client.MatchCredits--
	match.Status = MatchUnlocked
	match.UnlockedAt = &at
	u := &Unlock{
		ID:          uuid.New(),
		ClientID:    clientID,
		DesignerID:  match.DesignerID,
		MatchID:     matchID,
		CreditsUsed: 1,
		CreatedAt:   at,
	}
	m.unlocks[u.ID] = u
	cp := *u
	return &cp, true, nil
}

func (m *MemoryRepository) ListUnlocksByClient(_ context.Context, clientID uuid.UUID) ([]Unlock, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Unlock
	for _, u := range m.unlocks {
		if u.ClientID == clientID {
			out = append(out, *u)
		}
	}
	slices.SortFunc(out, func(a, b Unlock) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) CreateProjectRequest(_ context.Context, r *ProjectRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, ok := m.matches[r.MatchID]
	if !ok {
		return ErrNotFound
	}
	for _, existing := range m.requests {
		if existing.MatchID == r.MatchID && existing.Status == RequestPending {
			return ErrRequestExists
		}
	}
	cp := *r
	m.requests[r.ID] = &cp
	match.Status = MatchContacted
	return nil
}

func (m *MemoryRepository) GetProjectRequest(_ context.Context, id uuid.UUID) (*ProjectRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOf(m.requests, id)
}

func (m *MemoryRepository) ListProjectRequestsByDesigner(_ context.Context, designerID uuid.UUID) ([]ProjectRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ProjectRequest
	for _, r := range m.requests {
		if r.DesignerID == designerID {
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b ProjectRequest) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) RespondProjectRequest(_ context.Context, id uuid.UUID, status RequestStatus, message string, at time.Time) (*ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != RequestPending {
		return nil, ErrRequestNotPending
	}
	r.Status = status
	r.ResponseMessage = message
	r.RespondedAt = &at
	cp := *r
	return &cp, nil
}

func (m *MemoryRepository) ExpireProjectRequests(_ context.Context, now time.Time) ([]ProjectRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []ProjectRequest
	for _, r := range m.requests {
		if r.Status == RequestPending && !r.ExpiresAt.After(now) {
			r.Status = RequestExpired
			out = append(out, *r)
		}
	}
	slices.SortFunc(out, func(a, b ProjectRequest) int { return a.ExpiresAt.Compare(b.ExpiresAt) })
	return out, nil
}

func (m *MemoryRepository) AddCredits(_ context.Context, p *CreditPurchase) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.purchases[p.OrderID]; ok {
		return false, nil
	}
	client, ok := m.clients[p.ClientID]
	if !ok {
		return false, ErrNotFound
	}
	client.MatchCredits += p.Credits
	cp := *p
	m.purchases[p.OrderID] = &cp
	return true, nil
}

func (m *MemoryRepository) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{
		Designers: map[DesignerStatus]int{
			DesignerPending:  0,
			DesignerApproved: 0,
			DesignerRejected: 0,
		},
		Clients:         len(m.clients),
		Briefs:          len(m.briefs),
		Matches:         len(m.matches),
		Unlocks:         len(m.unlocks),
		ProjectRequests: len(m.requests),
	}
	for _, d := range m.designers {
		s.Designers[d.Status]++
	}
	for _, p := range m.purchases {
		s.CreditsSold += p.Credits
		s.RevenueCents += p.AmountCents
	}
	return s, nil
}

func cloneOf[T any](items map[uuid.UUID]*T, id uuid.UUID) (*T, error) {
	v, ok := items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}
