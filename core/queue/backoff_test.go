package queue_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/onedesigner/onedesigner/core/queue"
)

func TestExponentialBackoff(t *testing.T) {
	t.Parallel()

	b := queue.ExponentialBackoff(time.Second, 30*time.Second)

	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second},
		{60, 30 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b(tt.failures), "failures=%d", tt.failures)
	}
}

func TestLinearBackoff(t *testing.T) {
	t.Parallel()

	b := queue.LinearBackoff(30 * time.Second)
	assert.Equal(t, 30*time.Second, b(1))
	assert.Equal(t, 90*time.Second, b(3))
	assert.Equal(t, 30*time.Second, b(0))
}

func TestConfigBackoff(t *testing.T) {
	t.Parallel()

	cfg := queue.DefaultConfig()
	cfg.BackoffBase = 2 * time.Second
	cfg.BackoffMax = 5 * time.Second
	b := cfg.Backoff()
	assert.Equal(t, 2*time.Second, b(1))
	assert.Equal(t, 4*time.Second, b(2))
	assert.Equal(t, 5*time.Second, b(3))
}
