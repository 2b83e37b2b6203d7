package pgrepo

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onedesigner/onedesigner/integration/database/pg"
	"github.com/onedesigner/onedesigner/internal/marketplace"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsTable keeps the version history of this package's schema.
const MigrationsTable = "marketplace_migrations"

// Migrate creates or upgrades the marketplace schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	return pg.Migrate(ctx, pool, sub, MigrationsTable, log)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the Postgres marketplace.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

var _ marketplace.Repository = (*Repository)(nil)

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// db joins a transaction attached with pg.WithTx when there is one.
func (r *Repository) db(ctx context.Context) querier {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

// inTx runs fn in the caller's transaction or a new one.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return fn(tx)
	}
	return pgx.BeginFunc(ctx, r.pool, fn)
}

// mapErr translates driver errors into marketplace errors.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsNotFoundError(err), pg.IsForeignKeyViolationError(err):
		return fmt.Errorf("%s: %w", op, marketplace.ErrNotFound)
	case pg.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, marketplace.ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}
