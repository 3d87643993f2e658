package httpapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	exceeded, count, resetAt := limiter.CheckLimit("a")
	assert.False(t, exceeded)
	assert.Equal(t, 1, count)
	assert.Equal(t, now.Add(time.Minute), resetAt)

	exceeded, count, _ = limiter.CheckLimit("a")
	assert.False(t, exceeded)
	assert.Equal(t, 2, count)

	exceeded, count, _ = limiter.CheckLimit("a")
	assert.True(t, exceeded)
	assert.Equal(t, 3, count)

	// Other keys have their own window
	exceeded, _, _ = limiter.CheckLimit("b")
	assert.False(t, exceeded)

	// A new window starts once the period has passed
	now = now.Add(time.Minute)
	exceeded, count, _ = limiter.CheckLimit("a")
	assert.False(t, exceeded)
	assert.Equal(t, 1, count)
}

func TestRateLimiterEvictsExpiredEntries(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(5, time.Second)
	limiter.now = func() time.Time { return now }

	limiter.CheckLimit("a")
	limiter.CheckLimit("b")
	assert.Len(t, limiter.counters, 2)

	now = now.Add(2 * time.Second)
	limiter.CheckLimit("c")
	assert.Len(t, limiter.counters, 1)
	assert.Contains(t, limiter.counters, "c")
}
