package pgrepo

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/internal/marketplace"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	sub, err := fs.Sub(migrations, "migrations")
	require.NoError(t, err)

	files, err := fs.Glob(sub, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	body, err := fs.ReadFile(sub, files[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "-- +goose Down")
	assert.Contains(t, string(body), "project_requests_one_pending_idx")
}

func TestMapErr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: marketplace.ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: marketplace.ErrNotFound},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, want: marketplace.ErrNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: marketplace.ErrAlreadyExists},
		{name: "domain error kept", err: marketplace.ErrInsufficientCredits, want: marketplace.ErrInsufficientCredits},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := mapErr("op", tt.err)
			require.Error(t, got)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), "op: ")
		})
	}

	assert.NoError(t, mapErr("op", nil))

	other := errors.New("boom")
	assert.ErrorIs(t, mapErr("op", other), other)
}

func TestNonNil(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, nonNil(nil))
	assert.Empty(t, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}
