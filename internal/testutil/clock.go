package testutil

import (
	"sync"
	"time"
)

// PostTime is the creation time CreatePost gives every test post.
var PostTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

// StubClock is a services.Clock that only moves when Advance is called.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// NewTestClock starts half an hour after PostTime.
func NewTestClock() *StubClock {
	return NewStubClock(PostTime.Add(30 * time.Minute))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
