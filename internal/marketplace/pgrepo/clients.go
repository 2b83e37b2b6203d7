package pgrepo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/onedesigner/onedesigner/internal/marketplace"
)

const clientColumns = `id, email, name, company, match_credits, created_at`

func scanClient(row pgx.Row) (*marketplace.Client, error) {
	var c marketplace.Client
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Company, &c.MatchCredits, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateClient(ctx context.Context, c *marketplace.Client) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Email, c.Name, c.Company, c.MatchCredits, c.CreatedAt,
	)
	return mapErr("create client", err)
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*marketplace.Client, error) {
	c, err := scanClient(r.db(ctx).QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get client", err)
	}
	return c, nil
}

func (r *Repository) AddCredits(ctx context.Context, p *marketplace.CreditPurchase) (bool, error) {
	applied := false
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`INSERT INTO credit_purchases (id, client_id, order_id, credits, amount_cents, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (order_id) DO NOTHING`,
			p.ID, p.ClientID, p.OrderID, p.Credits, p.AmountCents, p.CreatedAt,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx,
			`UPDATE clients SET match_credits = match_credits + $2 WHERE id = $1`,
			p.ClientID, p.Credits,
		); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, mapErr("add credits", err)
	}
	return applied, nil
}

func (r *Repository) Stats(ctx context.Context) (marketplace.Stats, error) {
	s := marketplace.Stats{Designers: map[marketplace.DesignerStatus]int{}}
	var pending, approved, rejected int
	err := r.db(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM designers WHERE status = 'pending'),
			(SELECT count(*) FROM designers WHERE status = 'approved'),
			(SELECT count(*) FROM designers WHERE status = 'rejected'),
			(SELECT count(*) FROM clients),
			(SELECT count(*) FROM briefs),
			(SELECT count(*) FROM matches),
			(SELECT count(*) FROM unlocks),
			(SELECT count(*) FROM project_requests),
			(SELECT coalesce(sum(credits), 0) FROM credit_purchases),
			(SELECT coalesce(sum(amount_cents), 0) FROM credit_purchases)`,
	).Scan(&pending, &approved, &rejected, &s.Clients, &s.Briefs, &s.Matches,
		&s.Unlocks, &s.ProjectRequests, &s.CreditsSold, &s.RevenueCents)
	if err != nil {
		return s, mapErr("stats", err)
	}
	s.Designers[marketplace.DesignerPending] = pending
	s.Designers[marketplace.DesignerApproved] = approved
	s.Designers[marketplace.DesignerRejected] = rejected
	return s, nil
}
