// Package ratelimit implements a per-client sliding-window request limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter admits at most max requests per client key within any rolling window.
// The zero value is not usable; construct with New.
type Limiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	history map[string][]time.Time
}

// New creates a Limiter with the given window width and admission ceiling.
func New(window time.Duration, max int) *Limiter {
	return &Limiter{
		window:  window,
		max:     max,
		now:     time.Now,
		history: make(map[string][]time.Time),
	}
}

// NewWithClock is like New but uses the supplied clock. Tests use this to
// advance time deterministically.
func NewWithClock(window time.Duration, max int, now func() time.Time) *Limiter {
	l := New(window, max)
	l.now = now
	return l
}

// Allow reports whether a request from key is admitted right now. Admitted
// requests are recorded and count against the key's window; rejected requests
// leave no trace.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.history[key]
	// Drop entries that have aged out of the window. Entries are appended in
	// admission order, so the first in-window entry marks the prune point.
	i := 0
	for i < len(recent) && !recent[i].After(cutoff) {
		i++
	}
	recent = recent[i:]

	if len(recent) >= l.max {
		l.history[key] = recent
		return false
	}

	l.history[key] = append(recent, now)
	return true
}

// Len returns the number of in-window admissions recorded for key.
func (l *Limiter) Len(key string) int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, t := range l.history[key] {
		if t.After(cutoff) {
			n++
		}
	}
	return n
}
