package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

var RealClockProvider = sync.OnceValue(func() Clock {
	return &RealClock{}
})

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a Clock whose time only moves when told to. Safe for concurrent use.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
