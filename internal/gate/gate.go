// Package gate provides the pause gate that suspends a job's worker goroutine
// while the job is not runnable.
package gate

import (
	"context"
	"sync"
)

// Gate is a two-state barrier. While open, PassThrough returns immediately;
// while closed, it blocks until some goroutine calls Open.
//
// Close and Open are idempotent. Every Close creates a fresh release channel,
// so a goroutine that passes through twice in a row waits on the current one
// and is woken by the next Open, whichever goroutine calls it.
type Gate struct {
	mu      sync.Mutex
	open    bool
	release chan struct{}
}

// New returns an open gate.
func New() *Gate {
	return &Gate{open: true}
}

// Close marks the gate closed. Closing a closed gate does nothing.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return
	}
	g.open = false
	g.release = make(chan struct{})
}

// Open marks the gate open and wakes every waiter. Opening an open gate does nothing.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	close(g.release)
}

// IsOpen reports whether the gate is currently open.
func (g *Gate) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// PassThrough blocks while the gate is closed.
func (g *Gate) PassThrough() {
	_ = g.Wait(context.Background())
}

// Wait blocks while the gate is closed or until ctx is done.
//
// Returns:
//   - nil once the gate was observed open.
//   - ctx.Err() if the context ended first.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		g.mu.Lock()
		if g.open {
			g.mu.Unlock()
			return nil
		}
		release := g.release
		g.mu.Unlock()

		select {
		case <-release:
			// re-check: the gate may have been closed again before we got here
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
