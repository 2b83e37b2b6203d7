package queue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onedesigner/onedesigner/core/queue"
)

func TestSchedules(t *testing.T) {
	t.Parallel()

	ref := time.Date(2025, 3, 10, 14, 20, 0, 0, time.UTC)

	t.Run("every", func(t *testing.T) {
		t.Parallel()
		s := queue.Every(15 * time.Minute)
		assert.Equal(t, ref.Add(15*time.Minute), s.Next(ref))
		assert.Equal(t, "every 15m0s", s.String())
		assert.Equal(t, ref.Add(time.Minute), queue.Every(0).Next(ref))
	})

	t.Run("hourly later this hour", func(t *testing.T) {
		t.Parallel()
		s := queue.Hourly(45)
		assert.Equal(t, time.Date(2025, 3, 10, 14, 45, 0, 0, time.UTC), s.Next(ref))
	})

	t.Run("hourly next hour", func(t *testing.T) {
		t.Parallel()
		s := queue.Hourly(20)
		assert.Equal(t, time.Date(2025, 3, 10, 15, 20, 0, 0, time.UTC), s.Next(ref))
		assert.Equal(t, "hourly at :20", s.String())
	})

	t.Run("daily today", func(t *testing.T) {
		t.Parallel()
		s := queue.Daily(18, 0)
		assert.Equal(t, time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC), s.Next(ref))
	})

	t.Run("daily tomorrow", func(t *testing.T) {
		t.Parallel()
		s := queue.Daily(3, 30)
		assert.Equal(t, time.Date(2025, 3, 11, 3, 30, 0, 0, time.UTC), s.Next(ref))
		assert.Equal(t, "daily at 03:30", s.String())
	})

	t.Run("out of range values are clamped", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "daily at 23:59", queue.Daily(40, 99).String())
	})
}
