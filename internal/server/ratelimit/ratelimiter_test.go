package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowWithinLimit(t *testing.T) {
	limiter := NewLimiter()
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("30001", 3, time.Minute))
	}
	assert.False(t, limiter.Allow("30001", 3, time.Minute))
}

func TestAllowPerKey(t *testing.T) {
	limiter := NewLimiter()
	assert.True(t, limiter.Allow("30001", 1, time.Minute))
	assert.False(t, limiter.Allow("30001", 1, time.Minute))
	assert.True(t, limiter.Allow("30002", 1, time.Minute))
}

func TestAllowNewWindow(t *testing.T) {
	limiter := NewLimiter()
	assert.True(t, limiter.Allow("30001", 1, 100*time.Millisecond))
	assert.False(t, limiter.Allow("30001", 1, 100*time.Millisecond))
	time.Sleep(150 * time.Millisecond)
	assert.True(t, limiter.Allow("30001", 1, 100*time.Millisecond))
}

func TestSweepEvictsExpiredWindows(t *testing.T) {
	limiter := NewLimiter()
	assert.True(t, limiter.Allow("30001", 1, time.Millisecond))
	assert.True(t, limiter.Allow("30002", 1, time.Hour))

	limiter.mu.Lock()
	limiter.sweep(time.Now().Add(time.Minute))
	assert.NotContains(t, limiter.windows, "30001")
	assert.Contains(t, limiter.windows, "30002")
	limiter.mu.Unlock()
}

func TestAllowSweepsStaleKeys(t *testing.T) {
	limiter := NewLimiter()
	assert.True(t, limiter.Allow("30001", 1, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	// Force the next Allow to run a sweep.
	limiter.mu.Lock()
	limiter.lastSweep = time.Now().Add(-sweepInterval)
	limiter.mu.Unlock()

	assert.True(t, limiter.Allow("30002", 1, time.Minute))
	limiter.mu.Lock()
	assert.NotContains(t, limiter.windows, "30001")
	limiter.mu.Unlock()
}
