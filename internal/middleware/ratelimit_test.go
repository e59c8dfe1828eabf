package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerCallerBuckets(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimit{RequestsPerMinute: 60, Burst: 2}, nil)
	rl.clockNow = func() time.Time { return now }

	assert.True(t, rl.Allow("alice"))
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"), "burst exhausted")
	assert.True(t, rl.Allow("bob"), "other callers have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("alice"), "one token refilled after a second")
	assert.False(t, rl.Allow("alice"))
}

func TestRateLimiter_EvictsIdleCallers(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimit{RequestsPerMinute: 1, Burst: 1}, nil)
	rl.clockNow = func() time.Time { return now }

	assert.True(t, rl.Allow("alice"))
	assert.Len(t, rl.visitors, 1)

	now = now.Add(idleTTL + time.Second)
	assert.True(t, rl.Allow("bob"))
	assert.Len(t, rl.visitors, 1)
	_, ok := rl.visitors["alice"]
	assert.False(t, ok)
}

func TestRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(RateLimit{}, nil)
	assert.True(t, rl.Allow("alice"))
	assert.False(t, rl.Allow("alice"))
}
