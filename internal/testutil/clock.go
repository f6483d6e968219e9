package testutil

import (
	"sync"
	"time"
)

// FixedTime is the instant FixedClock starts at unless told otherwise.
var FixedTime = time.Date(2024, time.March, 7, 14, 5, 9, 0, time.UTC)

// FixedClock is a wall clock that only moves when told to.
//
// Generated files embed a timestamp; a fixed clock makes them byte-identical
// across runs so they can be compared against golden files.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock stopped at t. A zero t means FixedTime.
func NewFixedClock(t time.Time) *FixedClock {
	if t.IsZero() {
		t = FixedTime
	}
	return &FixedClock{now: t}
}

// Now returns the current fixed instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
