// Package ratelimit tracks request counts in fixed windows per key. The API
// sits behind the campus SSO proxy, so keys are UIDs rather than API tokens;
// the limiter protects the data loch from a single user hammering the grade
// distribution endpoints.
package ratelimit

import (
	"sync"
	"time"
)

// Stale windows are swept opportunistically while serving requests, so the
// limiter needs no background goroutine or shutdown hook.
const sweepInterval = 5 * time.Minute

// Limiter tracks request counts in fixed windows per key.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	lastSweep time.Time
}

type window struct {
	count int
	end   time.Time
}

// NewLimiter creates a limiter with in-memory tracking.
func NewLimiter() *Limiter {
	return &Limiter{
		windows:   make(map[string]*window),
		lastSweep: time.Now(),
	}
}

// Allow returns true if the request is within the limit for its key's current
// window. A new window opens when the previous one has elapsed.
func (l *Limiter) Allow(key string, limit int, windowDuration time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	win := l.windows[key]
	if win == nil || now.After(win.end) {
		l.windows[key] = &window{count: 1, end: now.Add(windowDuration)}
		return true
	}
	if win.count < limit {
		win.count++
		return true
	}
	return false
}

func (l *Limiter) sweep(now time.Time) {
	for key, win := range l.windows {
		if now.After(win.end) {
			delete(l.windows, key)
		}
	}
	l.lastSweep = now
}
