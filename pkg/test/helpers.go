package test

import (
	"sync"
	"time"
)

// Clock is a manual clock for deterministic timestamps. Every call to Now
// advances it by Step so consecutive writes get strictly increasing times.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration
}

func NewClock(start time.Time) *Clock {
	return &Clock{current: start, Step: time.Second}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.current
	c.current = c.current.Add(c.Step)

	return now
}

func Ptr[T any](v T) *T {
	return &v
}
