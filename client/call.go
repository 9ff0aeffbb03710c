package client

import (
	"context"
	"fmt"
	"sync"
)

// Call is a request running on its own goroutine.
type Call[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu        sync.Mutex
	cancelled bool
	val       T
	err       error
}

// Go runs Execute in the background. onDone, if non-nil, receives the
// result unless the call is cancelled first.
func Go[T any](ctx context.Context, c *Client, d Descriptor, decode DecodeFunc[T], onDone func(T, error)) *Call[T] {
	ctx, cancel := context.WithCancel(ctx)

	call := &Call[T]{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(call.done)
		defer cancel()

		v, err := Execute(ctx, c, d, decode)

		call.mu.Lock()
		skip := call.cancelled
		if skip {
			var zero T
			v, err = zero, fmt.Errorf("call cancelled: %w", context.Canceled)
		}
		call.val, call.err = v, err
		call.mu.Unlock()

		if !skip && onDone != nil {
			onDone(v, err)
		}
	}()

	return call
}

// Cancel aborts the call and waits until its gate ticket is released.
// onDone is not invoked after Cancel returns. It must not be called from
// within onDone.
func (c *Call[T]) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()

	c.cancel()
	<-c.done
}

// Done is closed once the call has finished.
func (c *Call[T]) Done() <-chan struct{} { return c.done }

// Result blocks until the call finishes.
func (c *Call[T]) Result() (T, error) {
	<-c.done

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.val, c.err
}
