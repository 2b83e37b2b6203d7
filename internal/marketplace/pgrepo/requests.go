package pgrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/onedesigner/onedesigner/integration/database/pg"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

const requestColumns = `id, match_id, client_id, designer_id, message, status,
	response_message, created_at, responded_at, expires_at`

func scanRequest(row pgx.Row) (marketplace.ProjectRequest, error) {
	var p marketplace.ProjectRequest
	err := row.Scan(&p.ID, &p.MatchID, &p.ClientID, &p.DesignerID, &p.Message, &p.Status,
		&p.ResponseMessage, &p.CreatedAt, &p.RespondedAt, &p.ExpiresAt)
	return p, err
}

func collectRequests(rows pgx.Rows) ([]marketplace.ProjectRequest, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (marketplace.ProjectRequest, error) {
		return scanRequest(row)
	})
}

func (r *Repository) CreateProjectRequest(ctx context.Context, p *marketplace.ProjectRequest) error {
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO project_requests (`+requestColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, p.MatchID, p.ClientID, p.DesignerID, p.Message, string(p.Status),
			p.ResponseMessage, p.CreatedAt, p.RespondedAt, p.ExpiresAt,
		)
		if pg.IsDuplicateKeyError(err) {
			return marketplace.ErrRequestExists
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE matches SET status = 'contacted' WHERE id = $1`, p.MatchID)
		return err
	})
	return mapErr("create project request", err)
}

func (r *Repository) GetProjectRequest(ctx context.Context, id uuid.UUID) (*marketplace.ProjectRequest, error) {
	p, err := scanRequest(r.db(ctx).QueryRow(ctx, `SELECT `+requestColumns+` FROM project_requests WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get project request", err)
	}
	return &p, nil
}

func (r *Repository) ListProjectRequestsByDesigner(ctx context.Context, designerID uuid.UUID) ([]marketplace.ProjectRequest, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+requestColumns+` FROM project_requests WHERE designer_id = $1 ORDER BY created_at DESC`, designerID)
	if err != nil {
		return nil, mapErr("list project requests", err)
	}
	out, err := collectRequests(rows)
	return out, mapErr("list project requests", err)
}

func (r *Repository) RespondProjectRequest(ctx context.Context, id uuid.UUID, status marketplace.RequestStatus, message string, at time.Time) (*marketplace.ProjectRequest, error) {
	p, err := scanRequest(r.db(ctx).QueryRow(ctx,
		`UPDATE project_requests SET status = $2, response_message = $3, responded_at = $4
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+requestColumns,
		id, string(status), message, at,
	))
	if err == nil {
		return &p, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, mapErr("respond to project request", err)
	}
	if _, err := r.GetProjectRequest(ctx, id); err != nil {
		return nil, err
	}
	return nil, marketplace.ErrRequestNotPending
}

func (r *Repository) ExpireProjectRequests(ctx context.Context, now time.Time) ([]marketplace.ProjectRequest, error) {
	rows, err := r.db(ctx).Query(ctx,
		`UPDATE project_requests SET status = 'expired'
		 WHERE status = 'pending' AND expires_at <= $1
		 RETURNING `+requestColumns, now)
	if err != nil {
		return nil, mapErr("expire project requests", err)
	}
	out, err := collectRequests(rows)
	return out, mapErr("expire project requests", err)
}
