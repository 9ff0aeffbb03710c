// Package gate provides single-slot admission control for outbound requests.
//
// A [Gate] hands out at most one [Ticket] at a time. Callers that find the
// gate busy block until the current ticket is released or their context
// ends. Waiters are not served in any particular order.
//
//	t, err := g.Acquire(ctx)
//	if err != nil {
//		return err
//	}
//	defer t.Release()
package gate

import (
	"context"
	"fmt"
	"sync"
)

// Gate serializes access to a rate sensitive backend.
type Gate struct {
	slot chan struct{}
}

// New returns an idle Gate.
func New() *Gate {
	return &Gate{slot: make(chan struct{}, 1)}
}

// Ticket is proof of admission. It must be released on every exit path.
type Ticket struct {
	once sync.Once
	g    *Gate
}

// Acquire blocks until the gate is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) (*Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("gate acquire: %w", err)
	}

	select {
	case g.slot <- struct{}{}:
		return &Ticket{g: g}, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("gate acquire: %w", ctx.Err())
	}
}

// Busy reports whether a ticket is currently outstanding.
func (g *Gate) Busy() bool {
	return len(g.slot) == 1
}

// Release frees the gate. Only the first call has any effect.
func (t *Ticket) Release() {
	if t == nil {
		return
	}
	t.once.Do(func() {
		<-t.g.slot
	})
}
