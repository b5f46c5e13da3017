package arc

import (
	"context"
	"time"

	"github.com/arclabs/arc-runtime/internal/breaker"
	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/queue"
	"github.com/arclabs/arc-runtime/internal/telem"
)

// Start brings the runtime to the running state: it spawns the tick thread,
// which arms the Loop on its own goroutine before Start goes on, then
// spawns the notify thread. Start returns true only on
// the first call after construction, or after a completed Stop; any other
// call is a no-op that returns false, matching the lifecycle idempotency
// rule every caller must be able to rely on.
func (r *Runtime) Start() bool {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return false
	}
	if r.everStarted {
		// A prior Stop closed these permanently; a fresh start needs fresh
		// ones so write/read work again (restartability).
		r.inputQ = queue.New(r.cfg.InputQueueCapacity, errs.QueueFullInput)
		r.outputQ = queue.New(r.cfg.OutputQueueCapacity, errs.QueueFullOutput)
		r.breaker = breaker.New()
	}
	r.everStarted = true
	r.running = true
	r.startCount++
	br := r.breaker
	inputQ := r.inputQ
	outputQ := r.outputQ
	r.mu.Unlock()

	r.tickWG.Add(1)
	armed := make(chan struct{})
	go func() {
		// Loop.Start pins and prioritizes the calling OS thread, so it runs
		// on the goroutine that will call Wait.
		r.loop.Start()
		close(armed)
		r.tickThread(br, inputQ, outputQ)
	}()
	<-armed

	r.notifyWG.Add(1)
	go r.notifyThread(br, inputQ)

	return true
}

// Stop trips the breaker, closes the output queue first (so any blocked
// Read wakes up before the tick thread is joined — skipping this step
// deadlocks a consumer blocked in Read), then closes the input queue,
// stops the Loop, and waits for both long-lived threads to exit. It
// returns true only on the first call after a completed Start.
func (r *Runtime) Stop() bool {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return false
	}
	r.running = false
	r.stopCount++
	br := r.breaker
	outputQ := r.outputQ
	inputQ := r.inputQ
	r.mu.Unlock()

	br.Trip()
	outputQ.Close()
	inputQ.Close()
	r.loop.Stop()

	r.tickWG.Wait()
	r.notifyWG.Wait()

	r.metrics.Stop()
	return true
}

// Write pushes a frame onto the input queue. It does not block: a full
// queue fails fast with QUEUE_FULL_INPUT, the back-pressure signal an
// upstream producer is expected to respect.
func (r *Runtime) Write(frame *telem.Frame) error {
	r.mu.Lock()
	running := r.running
	inputQ := r.inputQ
	r.mu.Unlock()

	if !running {
		return errs.New("write", errs.RuntimeClosed, "runtime is not running")
	}
	if err := inputQ.Push(frame); err != nil {
		r.errorHandler(err)
		return err
	}
	return nil
}

// Read pops a frame from the output queue, blocking until one is
// available or the queue closes. It reports false once closed, at which
// point no further frame will ever arrive.
func (r *Runtime) Read(frame **telem.Frame) bool {
	r.mu.Lock()
	outputQ := r.outputQ
	r.mu.Unlock()

	f, ok := outputQ.Pop()
	if !ok {
		return false
	}
	*frame = f
	return true
}

// CloseOutputs closes the output queue early, unblocking any consumer
// currently parked in Read. Callers orchestrating a custom shutdown
// sequence (rather than relying on Stop's own ordering) call this first.
func (r *Runtime) CloseOutputs() {
	r.mu.Lock()
	outputQ := r.outputQ
	r.mu.Unlock()
	outputQ.Close()
}

// StartCount and StopCount report how many times Start/Stop actually had
// an effect versus were called; callers verifying lifecycle idempotency
// compare these against their own call counts.
func (r *Runtime) StartCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startCount
}

func (r *Runtime) StopCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopCount
}

// Close releases the WASM runtime and every compiled node module. Unlike
// Stop, this is final: a closed Runtime cannot be Started again. Call it
// after the last Stop, once the graph will never run again.
func (r *Runtime) Close(ctx context.Context) error {
	for _, n := range r.nodes {
		_ = n.Close(ctx)
	}
	return r.wazero.Close(ctx)
}

// tickThread is the runtime's one tick-driving goroutine: it waits for
// the Loop to say a tick is due, drains the input queue into State,
// drives the scheduler to a fixed point, resets the WASM transient arena,
// and flushes State's accumulated writes to the output queue. It exits
// when the Loop reports the breaker tripped.
func (r *Runtime) tickThread(br *breaker.Breaker, inputQ, outputQ *queue.FrameQueue) {
	defer r.tickWG.Done()
	for r.loop.Wait(br) {
		r.runTick(inputQ, outputQ)
	}
}

func (r *Runtime) runTick(inputQ, outputQ *queue.FrameQueue) {
	start := time.Now()

	r.drainInput(inputQ)

	fired := r.sched.Tick(r.state, func(err error) {
		r.metrics.RecordNodeError()
		if errs.IsKind(err, errs.WASMPanic) {
			r.metrics.RecordWASMPanic()
		}
		r.errorHandler(err)
	})

	r.host.Reset()

	out := r.state.Flush()
	if out.Len() > 0 {
		if err := outputQ.Push(out); err != nil {
			r.errorHandler(err)
		}
	}

	r.metrics.RecordTick(uint64(time.Since(start).Nanoseconds()), fired)
	r.metrics.RecordInputQueueDepth(uint32(inputQ.Len()))
	r.metrics.RecordOutputQueueDepth(uint32(outputQ.Len()))
}

// drainInput moves every frame currently queued on the input side into
// State before the tick's scheduler pass begins, per the "ingest and
// flush are serialized by draining at the top of the tick" ordering rule.
func (r *Runtime) drainInput(inputQ *queue.FrameQueue) {
	for {
		f, ok := inputQ.TryPop()
		if !ok {
			return
		}
		r.state.Ingest(f)
	}
}

// notifyThread bridges "input arrived" to the Loop's wake sources: it
// watches the input queue's external notifier and wakes the tick loop on
// every arrival. This matters for EVENT_DRIVEN and RT_EVENT modes, which
// have no periodic ticker of their own to fall back on; for HIGH_RATE and
// HYBRID it is a harmless extra wake between ticker firings. It exits when
// the breaker trips.
func (r *Runtime) notifyThread(br *breaker.Breaker, inputQ *queue.FrameQueue) {
	defer r.notifyWG.Done()
	notifier := inputQ.Notifier()
	for {
		select {
		case <-br.Done():
			return
		case <-notifier:
			r.loop.Wake()
		}
	}
}
