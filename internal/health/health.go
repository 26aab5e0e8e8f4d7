// Package health answers "is the store reachable" for the HTTP probes and the
// gRPC health service.
package health

import (
	"context"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// AlwaysUp is the Pinger of the in-memory store.
var AlwaysUp = PingFunc(func(context.Context) error { return nil })

type Probe struct {
	pinger  Pinger
	timeout time.Duration
	started time.Time
}

func NewProbe(p Pinger, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Probe{pinger: p, timeout: timeout, started: time.Now()}
}

// Alive reports whether the store answered a ping within the probe timeout.
func (p *Probe) Alive(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.pinger.Ping(ctx) == nil
}

// Uptime is the time since the probe was created.
func (p *Probe) Uptime() time.Duration {
	return time.Since(p.started)
}
