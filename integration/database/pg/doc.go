// Package pg manages the PostgreSQL connection pool used by the marketplace
// repository and the durable task store.
//
// Connect builds a pgxpool.Pool from Config, verifying it with a ping and
// retrying with exponential backoff so the API can start before the database
// is reachable:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
// Migrate applies goose migrations from an embedded filesystem. Every
// package owning tables ships its own migration set and version table:
//
//	//go:embed migrations/*.sql
//	var migrations embed.FS
//
//	sub, _ := fs.Sub(migrations, "migrations")
//	err := pg.Migrate(ctx, pool, sub, "marketplace_migrations", log)
//
// Healthcheck returns a check for core/health readiness checks.
//
// # Transactions
//
// WithTx attaches a pgx.Tx to a context and TxFromContext retrieves it, so
// repositories called inside a unit of work join the caller's transaction
// instead of using the pool:
//
//	tx, err := pool.Begin(ctx)
//	if err != nil {
//		return err
//	}
//	defer tx.Rollback(ctx)
//
//	ctx = pg.WithTx(ctx, tx)
//	// repository calls here use tx
//	return tx.Commit(ctx)
//
// # Errors
//
// IsNotFoundError, IsDuplicateKeyError, IsForeignKeyViolationError and
// IsTxClosedError classify driver errors so repositories can map them to
// domain errors.
package pg
