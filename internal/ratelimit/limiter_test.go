package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for limiter tests.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func TestAllow_CeilingWithinWindow(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	l := NewWithClock(time.Minute, 10, clock.Now)

	for i := 0; i < 10; i++ {
		require.True(t, l.Allow("1.2.3.4"), "request %d should be admitted", i+1)
		clock.Advance(time.Second)
	}
	require.False(t, l.Allow("1.2.3.4"), "11th request within the window should be rejected")
}

func TestAllow_WindowSlides(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	l := NewWithClock(time.Minute, 2, clock.Now)

	require.True(t, l.Allow("k"))
	require.True(t, l.Allow("k"))
	require.False(t, l.Allow("k"))

	// The first two admissions age out once the window has fully passed.
	clock.Advance(time.Minute + time.Second)
	require.True(t, l.Allow("k"))
	require.Equal(t, 1, l.Len("k"))
}

func TestAllow_RejectionLeavesNoTrace(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	l := NewWithClock(time.Minute, 1, clock.Now)

	require.True(t, l.Allow("k"))
	for i := 0; i < 5; i++ {
		require.False(t, l.Allow("k"))
	}
	require.Equal(t, 1, l.Len("k"), "rejected requests must not count against the window")
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	l := NewWithClock(time.Minute, 1, clock.Now)

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	require.True(t, l.Allow("b"))
}

func TestAllow_ConcurrentNeverOveradmits(t *testing.T) {
	clock := &fakeClock{cur: time.Unix(1000, 0)}
	l := NewWithClock(time.Minute, 10, clock.Now)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same-client") {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, admitted)
}
