package pgrepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/onedesigner/onedesigner/integration/database/pg"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

const designerColumns = `id, email, first_name, last_name, title, city, country, timezone,
	years_experience, styles, industries, project_types, tools, availability,
	hourly_rate_min, hourly_rate_max, portfolio_url, bio, phone, status,
	rejection_reason, created_at, approved_at`

func scanDesigner(row pgx.Row) (*marketplace.Designer, error) {
	var d marketplace.Designer
	err := row.Scan(&d.ID, &d.Email, &d.FirstName, &d.LastName, &d.Title, &d.City, &d.Country,
		&d.Timezone, &d.YearsExperience, &d.Styles, &d.Industries, &d.ProjectTypes, &d.Tools,
		&d.Availability, &d.HourlyRateMin, &d.HourlyRateMax, &d.PortfolioURL, &d.Bio, &d.Phone,
		&d.Status, &d.RejectionReason, &d.CreatedAt, &d.ApprovedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *Repository) CreateDesigner(ctx context.Context, d *marketplace.Designer) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO designers (`+designerColumns+`) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		d.ID, d.Email, d.FirstName, d.LastName, d.Title, d.City, d.Country, d.Timezone,
		d.YearsExperience, nonNil(d.Styles), nonNil(d.Industries), nonNil(d.ProjectTypes), nonNil(d.Tools),
		d.Availability, d.HourlyRateMin, d.HourlyRateMax, d.PortfolioURL, d.Bio, d.Phone,
		d.Status, d.RejectionReason, d.CreatedAt, d.ApprovedAt,
	)
	return mapErr("create designer", err)
}

func (r *Repository) GetDesigner(ctx context.Context, id uuid.UUID) (*marketplace.Designer, error) {
	d, err := scanDesigner(r.db(ctx).QueryRow(ctx, `SELECT `+designerColumns+` FROM designers WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get designer", err)
	}
	return d, nil
}

func (r *Repository) ListDesigners(ctx context.Context, status marketplace.DesignerStatus) ([]marketplace.Designer, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+designerColumns+` FROM designers
		 WHERE $1 = '' OR status = $1
		 ORDER BY created_at`,
		string(status),
	)
	if err != nil {
		return nil, mapErr("list designers", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (marketplace.Designer, error) {
		d, err := scanDesigner(row)
		if err != nil {
			return marketplace.Designer{}, err
		}
		return *d, nil
	})
	return out, mapErr("list designers", err)
}

func (r *Repository) ReviewDesigner(ctx context.Context, id uuid.UUID, status marketplace.DesignerStatus, reason string, at time.Time) (*marketplace.Designer, error) {
	d, err := scanDesigner(r.db(ctx).QueryRow(ctx,
		`UPDATE designers SET
			status = $2,
			rejection_reason = $3,
			approved_at = CASE WHEN $2 = 'approved' THEN $4::timestamptz END
		 WHERE id = $1 AND status = 'pending'
		 RETURNING `+designerColumns,
		id, string(status), reason, at,
	))
	if err == nil {
		return d, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, mapErr("review designer", err)
	}
	if _, err := r.GetDesigner(ctx, id); err != nil {
		return nil, err
	}
	return nil, marketplace.ErrDesignerNotPending
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
