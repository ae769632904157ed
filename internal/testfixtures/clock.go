package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Services take a now func, so tests
// hand them clock.NowFunc() and move time with Set or Advance to exercise
// session expiry and cache TTLs.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start, or at ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	clock := &Clock{now: start}
	if start.IsZero() {
		clock.now = ReferenceTime()
	}
	return clock
}

// Now reports the frozen instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Current is an alias for Now used by assertions that only read the clock.
func (c *Clock) Current() time.Time {
	return c.Now()
}

// NowFunc adapts the clock to the func() time.Time shape services expect.
// A nil clock falls back to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set freezes the clock at t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
