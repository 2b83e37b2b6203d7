package taskstore

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onedesigner/onedesigner/core/queue"
)

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	sub, err := fs.Sub(migrations, "migrations")
	require.NoError(t, err)

	body, err := fs.ReadFile(sub, "00001_queue.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE queue_tasks (")
	assert.Contains(t, string(body), "CREATE TABLE queue_tasks_dlq (")
	assert.Contains(t, string(body), "-- +goose Down")
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := New(nil)
	assert.Equal(t, queue.DefaultBackoff(3), s.backoff(3))
	assert.WithinDuration(t, time.Now(), s.now(), time.Second)

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s = New(nil, WithBackoff(queue.LinearBackoff(time.Minute)), WithClock(func() time.Time { return fixed }))
	assert.Equal(t, 2*time.Minute, s.backoff(2))
	assert.Equal(t, fixed, s.now())

	s = New(nil, WithBackoff(nil), WithClock(nil))
	assert.NotNil(t, s.backoff)
	assert.NotNil(t, s.now)
}
