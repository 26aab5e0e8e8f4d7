package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real truncates to microseconds, the precision Postgres keeps for timestamptz.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

type Fake struct {
	mu  sync.Mutex
	now time.Time
}

func NewFake(t time.Time) *Fake {
	return &Fake{now: t.UTC()}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}
