// Package queue implements the runtime's two bounded lock-free SPSC paths
// for frames: the input queue (ingest) and the output queue (egress). Both
// are the same FrameQueue type, distinguished only by which error Kind a
// full push reports.
//
// The ring itself is built directly on sync/atomic monotonic indices: with
// exactly one producer and one consumer, a plain load/store pair already
// gives the acquire/release ordering needed, so no memory-fence intrinsics
// are required here.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/telem"
)

// FrameQueue is a bounded single-producer/single-consumer ring buffer of
// Frames. Capacity is fixed at construction. Once Close is called the
// queue is permanently closed until a new FrameQueue is constructed by the
// runtime's next start().
type FrameQueue struct {
	buf      []atomic.Pointer[telem.Frame]
	capacity uint64
	fullKind errs.Kind

	head uint64 // consumer-owned
	tail uint64 // producer-owned

	closed   atomic.Bool
	closeOne sync.Once
	signal   chan struct{}
	closedCh chan struct{}
	notify   chan struct{}
}

// New returns a FrameQueue of the given capacity. fullKind is the error
// Kind reported when Push finds the ring full (QueueFullInput for ingest,
// QueueFullOutput for egress).
func New(capacity int, fullKind errs.Kind) *FrameQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &FrameQueue{
		buf:      make([]atomic.Pointer[telem.Frame], capacity),
		capacity: uint64(capacity),
		fullKind: fullKind,
		signal:   make(chan struct{}, 1),
		closedCh: make(chan struct{}),
		notify:   make(chan struct{}, 1),
	}
}

// Push enqueues a frame. It fails with RuntimeClosed if the queue has been
// closed, or with fullKind if the ring is at capacity. A successful push
// moves frame into the queue; the caller must not retain it.
func (q *FrameQueue) Push(frame *telem.Frame) error {
	if q.closed.Load() {
		return errs.New("push", errs.RuntimeClosed, "queue is closed")
	}
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	if tail-head >= q.capacity {
		return errs.New("push", q.fullKind, "queue is full")
	}
	q.buf[tail%q.capacity].Store(frame)
	atomic.AddUint64(&q.tail, 1)
	select {
	case q.signal <- struct{}{}:
	default:
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Pop blocks until a frame is available or the queue closes, returning
// (frame, true) in the former case and (nil, false) in the latter.
func (q *FrameQueue) Pop() (*telem.Frame, bool) {
	for {
		head := atomic.LoadUint64(&q.head)
		tail := atomic.LoadUint64(&q.tail)
		if head < tail {
			slot := head % q.capacity
			f := q.buf[slot].Load()
			q.buf[slot].Store(nil)
			atomic.AddUint64(&q.head, 1)
			return f, true
		}
		if q.closed.Load() {
			return nil, false
		}
		select {
		case <-q.signal:
		case <-q.closedCh:
		}
	}
}

// TryPop returns a frame without blocking: (frame, true) if one was
// available, (nil, false) otherwise (whether due to emptiness or closure).
func (q *FrameQueue) TryPop() (*telem.Frame, bool) {
	head := atomic.LoadUint64(&q.head)
	tail := atomic.LoadUint64(&q.tail)
	if head >= tail {
		return nil, false
	}
	slot := head % q.capacity
	f := q.buf[slot].Load()
	q.buf[slot].Store(nil)
	atomic.AddUint64(&q.head, 1)
	return f, true
}

// Len returns the number of frames currently queued.
func (q *FrameQueue) Len() int {
	tail := atomic.LoadUint64(&q.tail)
	head := atomic.LoadUint64(&q.head)
	return int(tail - head)
}

// Close renders the queue permanently closed, waking any blocked Pop.
// Idempotent.
func (q *FrameQueue) Close() {
	q.closeOne.Do(func() {
		q.closed.Store(true)
		close(q.closedCh)
	})
}

// Closed reports whether Close has been called.
func (q *FrameQueue) Closed() bool {
	return q.closed.Load()
}

// Notifier returns a channel that fires once per Push, coalesced the same
// way the internal wake signal Pop waits on is. It is a distinct channel
// from that internal signal so an external watcher (the runtime's notify
// thread) never steals a wakeup from a concurrently blocked Pop. The
// runtime uses this to bridge "input arrived" to the tick loop's
// Wake/Watch sources in EVENT_DRIVEN and RT_EVENT modes, where the loop
// has no periodic ticker of its own to fall back on.
func (q *FrameQueue) Notifier() <-chan struct{} {
	return q.notify
}
