// Package breaker implements the runtime's single cancellation primitive.
// A Breaker trips once, is observed by every blocking wait in the tick
// path, and also drives the exponential backoff used while the runtime is
// establishing its upstream connection at startup.
package breaker

import (
	"context"
	"sync"
	"time"
)

// Breaker is a one-shot cancellation signal. Trip is idempotent; any
// number of goroutines may call Wait/Done concurrently.
type Breaker struct {
	mu      sync.Mutex
	tripped bool
	done    chan struct{}
}

// New returns an untripped Breaker.
func New() *Breaker {
	return &Breaker{done: make(chan struct{})}
}

// Trip closes the breaker. Safe to call more than once or concurrently;
// only the first call has an effect.
func (b *Breaker) Trip() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tripped {
		return
	}
	b.tripped = true
	close(b.done)
}

// Tripped reports whether Trip has been called.
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped
}

// Done returns a channel closed when the breaker trips. Safe to select on
// from any number of goroutines, including before the first Trip call.
func (b *Breaker) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the breaker trips or the context is canceled, whichever
// comes first. It returns true if the breaker tripped.
func (b *Breaker) Wait(ctx context.Context) bool {
	select {
	case <-b.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// Backoff drives the exponential retry schedule used while the runtime
// attempts its initial connection to an upstream source. It shares the
// Breaker's trip signal so a caller can abort a retry loop from outside.
type Backoff struct {
	Base       time.Duration
	Max        time.Duration
	Scale      float64
	MaxRetries int // 0 means unlimited

	breaker *Breaker
	attempt int
}

// NewBackoff returns a Backoff tied to the given breaker's cancellation.
func NewBackoff(b *Breaker, base, max time.Duration, scale float64, maxRetries int) *Backoff {
	return &Backoff{Base: base, Max: max, Scale: scale, MaxRetries: maxRetries, breaker: b}
}

// Next returns the delay before the next retry attempt and whether a retry
// is still permitted. The first call returns attempt 0's delay (Base).
func (bo *Backoff) Next() (time.Duration, bool) {
	if bo.breaker.Tripped() {
		return 0, false
	}
	if bo.MaxRetries > 0 && bo.attempt >= bo.MaxRetries {
		return 0, false
	}
	d := bo.Base
	for i := 0; i < bo.attempt; i++ {
		d = time.Duration(float64(d) * bo.Scale)
		if d > bo.Max {
			d = bo.Max
			break
		}
	}
	bo.attempt++
	return d, true
}

// Reset clears the attempt counter, e.g. after a successful connection.
func (bo *Backoff) Reset() {
	bo.attempt = 0
}

// Sleep waits for d or until the breaker trips, returning false if the
// breaker tripped first.
func (bo *Backoff) Sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-bo.breaker.Done():
		return false
	}
}
