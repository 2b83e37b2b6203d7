// Package pgrepo stores marketplace entities in Postgres through pgx.
//
// The schema ships as goose migrations embedded in the binary and tracked in
// their own version table:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := pgrepo.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//	repo := pgrepo.New(pool)
//
// Methods join a transaction attached to the context with pg.WithTx, so
// several repository calls can commit together. UnlockMatch locks the match
// row and decrements the client's balance in one transaction; the balance
// CHECK constraint keeps credits from going negative.
package pgrepo
