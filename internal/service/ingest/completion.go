package ingest

import (
	"context"
	"sync"
	"time"
)

// completion is a single-shot signal settable from any terminal callback.
// The first Settle wins; later calls are no-ops, including under
// concurrent delivery of both terminal events.
type completion struct {
	once sync.Once
	done chan struct{}
}

func newCompletion() *completion {
	return &completion{done: make(chan struct{})}
}

// Settle resolves the signal. Safe to call from multiple goroutines.
func (c *completion) Settle() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Wait blocks until the signal resolves, the context is canceled, or the
// timeout elapses. A zero timeout disables the bound.
func (c *completion) Wait(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
