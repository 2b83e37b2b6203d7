package pgrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/onedesigner/onedesigner/internal/marketplace"
)

const briefColumns = `id, client_id, project_type, industry, styles, timeline, budget_min,
	budget_max, description, required_tools, preferred_timezone, status, created_at`

func scanBrief(row pgx.Row) (marketplace.Brief, error) {
	var b marketplace.Brief
	err := row.Scan(&b.ID, &b.ClientID, &b.ProjectType, &b.Industry, &b.Styles, &b.Timeline,
		&b.BudgetMin, &b.BudgetMax, &b.Description, &b.RequiredTools, &b.PreferredTimezone,
		&b.Status, &b.CreatedAt)
	return b, err
}

func (r *Repository) CreateBrief(ctx context.Context, b *marketplace.Brief) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO briefs (`+briefColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		b.ID, b.ClientID, b.ProjectType, b.Industry, nonNil(b.Styles), b.Timeline, b.BudgetMin,
		b.BudgetMax, b.Description, nonNil(b.RequiredTools), b.PreferredTimezone, string(b.Status), b.CreatedAt,
	)
	return mapErr("create brief", err)
}

func (r *Repository) GetBrief(ctx context.Context, id uuid.UUID) (*marketplace.Brief, error) {
	b, err := scanBrief(r.db(ctx).QueryRow(ctx, `SELECT `+briefColumns+` FROM briefs WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get brief", err)
	}
	return &b, nil
}

func (r *Repository) ListBriefsByClient(ctx context.Context, clientID uuid.UUID) ([]marketplace.Brief, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+briefColumns+` FROM briefs WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, mapErr("list briefs", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (marketplace.Brief, error) {
		return scanBrief(row)
	})
	return out, mapErr("list briefs", err)
}

const matchColumns = `id, brief_id, designer_id, score, reasons, status, created_at, unlocked_at`

func scanMatch(row pgx.Row) (marketplace.Match, error) {
	var m marketplace.Match
	err := row.Scan(&m.ID, &m.BriefID, &m.DesignerID, &m.Score, &m.Reasons, &m.Status, &m.CreatedAt, &m.UnlockedAt)
	return m, err
}

func (r *Repository) SaveMatches(ctx context.Context, briefID uuid.UUID, matches []marketplace.Match) (bool, error) {
	var saved bool
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE briefs SET status = 'matched' WHERE id = $1 AND status = 'active'`, briefID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM briefs WHERE id = $1)`, briefID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return pgx.ErrNoRows
			}
			return nil
		}

		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"matches"},
			[]string{"id", "brief_id", "designer_id", "score", "reasons", "status", "created_at"},
			pgx.CopyFromSlice(len(matches), func(i int) ([]any, error) {
				m := matches[i]
				return []any{m.ID, briefID, m.DesignerID, m.Score, nonNil(m.Reasons), string(m.Status), m.CreatedAt}, nil
			}),
		)
		if err != nil {
			return err
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, mapErr("save matches", err)
	}
	return saved, nil
}

func (r *Repository) GetMatch(ctx context.Context, id uuid.UUID) (*marketplace.Match, error) {
	m, err := scanMatch(r.db(ctx).QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get match", err)
	}
	return &m, nil
}

func (r *Repository) ListMatchesByBrief(ctx context.Context, briefID uuid.UUID) ([]marketplace.Match, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE brief_id = $1 ORDER BY score DESC, designer_id::text`, briefID)
	if err != nil {
		return nil, mapErr("list matches", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (marketplace.Match, error) {
		return scanMatch(row)
	})
	return out, mapErr("list matches", err)
}

func (r *Repository) UnlockMatch(ctx context.Context, clientID, matchID uuid.UUID, at time.Time) (*marketplace.Unlock, bool, error) {
	var (
		unlock  marketplace.Unlock
		created bool
	)
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		var (
			status     marketplace.MatchStatus
			designerID uuid.UUID
		)
		// Row lock serializes concurrent unlocks of one match.
		err := tx.QueryRow(ctx,
			`SELECT status, designer_id FROM matches WHERE id = $1 FOR UPDATE`, matchID,
		).Scan(&status, &designerID)
		if err != nil {
			return err
		}

		if status != marketplace.MatchPending {
			return tx.QueryRow(ctx,
				`SELECT id, client_id, designer_id, match_id, credits_used, created_at
				 FROM unlocks WHERE match_id = $1`, matchID,
			).Scan(&unlock.ID, &unlock.ClientID, &unlock.DesignerID, &unlock.MatchID, &unlock.CreditsUsed, &unlock.CreatedAt)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE clients SET match_credits = match_credits - 1 WHERE id = $1 AND match_credits > 0`, clientID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, clientID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return marketplace.ErrNotFound
			}
			return marketplace.ErrInsufficientCredits
		}

		unlock = marketplace.Unlock{
			ID:          uuid.New(),
			ClientID:    clientID,
			DesignerID:  designerID,
			MatchID:     matchID,
			CreditsUsed: 1,
			CreatedAt:   at,
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO unlocks (id, client_id, designer_id, match_id, credits_used, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			unlock.ID, unlock.ClientID, unlock.DesignerID, unlock.MatchID, unlock.CreditsUsed, unlock.CreatedAt,
		); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE matches SET status = 'unlocked', unlocked_at = $2 WHERE id = $1`, matchID, at,
		); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, mapErr("unlock match", err)
	}
	return &unlock, created, nil
}

func (r *Repository) ListUnlocksByClient(ctx context.Context, clientID uuid.UUID) ([]marketplace.Unlock, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, client_id, designer_id, match_id, credits_used, created_at
		 FROM unlocks WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, mapErr("list unlocks", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (marketplace.Unlock, error) {
		var u marketplace.Unlock
		err := row.Scan(&u.ID, &u.ClientID, &u.DesignerID, &u.MatchID, &u.CreditsUsed, &u.CreatedAt)
		return u, err
	})
	return out, mapErr("list unlocks", err)
}
