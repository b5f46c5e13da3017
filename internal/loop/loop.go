// Package loop implements the tick driver: it decides when to start a tick
// and on what thread, across five execution modes. RT_EVENT and HYBRID pin
// their driving goroutine to an OS thread and apply realtime scheduling
// with runtime.LockOSThread and golang.org/x/sys/unix CPU affinity and
// SCHED_FIFO priority.
package loop

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"github.com/arclabs/arc-runtime/internal/breaker"
	"github.com/arclabs/arc-runtime/internal/logging"
)

// Mode selects the loop's tick-driving strategy.
type Mode int

const (
	BusyWait Mode = iota
	HighRate
	RTEvent
	Hybrid
	EventDriven
)

func (m Mode) String() string {
	switch m {
	case BusyWait:
		return "BUSY_WAIT"
	case HighRate:
		return "HIGH_RATE"
	case RTEvent:
		return "RT_EVENT"
	case Hybrid:
		return "HYBRID"
	case EventDriven:
		return "EVENT_DRIVEN"
	default:
		return "UNKNOWN"
	}
}

// Config carries the loop's tick-timing and realtime-scheduling
// parameters. Priority and affinity apply only on RTEvent and Hybrid, and
// only once, at Start.
type Config struct {
	Mode        Mode
	Interval    time.Duration
	RTPriority  int
	CPUAffinity int // -1 means unpinned
}

// Notifier is an additional event source the loop can watch: the loop
// fires a tick whenever it receives on the channel.
type Notifier = <-chan struct{}

// Loop decides when the runtime should begin the next tick. It exposes
// start/wake/watch/wait plus call counters for test assertions, matching
// the interface the runtime's tick thread drives against.
type Loop struct {
	config Config
	logger *logging.Logger

	mu       sync.Mutex
	started  bool
	watchers []Notifier
	ticker   *time.Ticker

	wakeCh chan struct{}

	startCount atomic.Int64
	wakeCount  atomic.Int64
	waitCount  atomic.Int64
	watchCount atomic.Int64
}

// New returns a Loop in its unstarted state.
func New(config Config, logger *logging.Logger) *Loop {
	if logger == nil {
		logger = logging.Default()
	}
	return &Loop{
		config: config,
		logger: logger,
		wakeCh: make(chan struct{}, 1),
	}
}

// Start applies the configured realtime priority and CPU affinity (for
// RTEvent/Hybrid) and arms the periodic ticker (for HighRate/Hybrid). It
// must be called from the goroutine that will subsequently call Wait, since
// thread pinning is only meaningful for the calling OS thread.
func (l *Loop) Start() {
	l.startCount.Add(1)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started {
		return
	}
	l.started = true

	if l.config.Mode == RTEvent || l.config.Mode == Hybrid {
		runtime.LockOSThread()
		l.applyRealtimeScheduling()
	}

	if l.config.Mode == HighRate || l.config.Mode == Hybrid {
		interval := l.config.Interval
		if interval <= 0 {
			interval = time.Millisecond
		}
		l.ticker = time.NewTicker(interval)
	}
}

func (l *Loop) applyRealtimeScheduling() {
	if l.config.CPUAffinity >= 0 {
		var set unix.CPUSet
		set.Set(l.config.CPUAffinity)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			l.logger.Warnf("loop: failed to set CPU affinity to %d: %v", l.config.CPUAffinity, err)
		}
	}
	if l.config.RTPriority > 0 {
		param := &unix.SchedParam{Priority: int32(l.config.RTPriority)}
		if err := unix.SchedSetscheduler(0, unix.SCHED_FIFO, param); err != nil {
			l.logger.Warnf("loop: failed to set realtime priority %d: %v", l.config.RTPriority, err)
		}
	}
}

// Wait suspends until the next tick moment, a Wake, a watched Notifier
// firing, or the breaker tripping, whichever comes first. It returns false
// only when the breaker tripped; any other return means the caller should
// run a tick.
func (l *Loop) Wait(br *breaker.Breaker) bool {
	l.waitCount.Add(1)

	switch l.config.Mode {
	case BusyWait:
		return !br.Tripped()
	case HighRate:
		return l.selectWait(br, l.tickerChan())
	case RTEvent, EventDriven:
		return l.selectWait(br, nil)
	case Hybrid:
		return l.selectWait(br, l.tickerChan())
	default:
		return l.selectWait(br, nil)
	}
}

func (l *Loop) tickerChan() <-chan time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ticker == nil {
		return nil
	}
	return l.ticker.C
}

// selectWait blocks on whichever of {tick timer, wake, watchers, breaker}
// fires first. A nil tickCh simply never fires, folding the event-driven
// and periodic cases into one implementation.
func (l *Loop) selectWait(br *breaker.Breaker, tickCh <-chan time.Time) bool {
	l.mu.Lock()
	watchers := append([]Notifier(nil), l.watchers...)
	l.mu.Unlock()

	if len(watchers) == 0 {
		select {
		case <-br.Done():
			return false
		case <-l.wakeCh:
			return true
		case <-tickCh:
			return true
		}
	}

	cases := make([]selectCase, 0, len(watchers)+3)
	cases = append(cases, selectCase{ch: br.Done()})
	cases = append(cases, selectCase{ch: l.wakeCh})
	if tickCh != nil {
		cases = append(cases, selectCase{tick: tickCh})
	}
	for _, w := range watchers {
		cases = append(cases, selectCase{ch: w})
	}
	return fireOnAny(cases, br)
}

// selectCase and fireOnAny let Wait select across a dynamic number of
// watcher channels, which a plain Go select statement cannot express.
type selectCase struct {
	ch   <-chan struct{}
	tick <-chan time.Time
}

func fireOnAny(cases []selectCase, br *breaker.Breaker) bool {
	done := make(chan bool, 1)
	stop := make(chan struct{})
	var once sync.Once
	signal := func(v bool) {
		once.Do(func() { done <- v; close(stop) })
	}
	for _, c := range cases {
		c := c
		go func() {
			if c.tick != nil {
				select {
				case <-c.tick:
					signal(true)
				case <-stop:
				}
				return
			}
			select {
			case <-c.ch:
				signal(c.ch != br.Done())
			case <-stop:
			}
		}()
	}
	return <-done
}

// Wake requests an immediate tick, waking a pending Wait if one is
// blocked. Multiple wakes before the next Wait collapse into one, since
// wakeCh is buffered to depth 1.
func (l *Loop) Wake() {
	l.wakeCount.Add(1)
	select {
	case l.wakeCh <- struct{}{}:
	default:
	}
}

// Watch registers an additional event source; the loop fires a tick on any
// watched notifier. It returns whether the registration was accepted
// (always true once Watch is called; kept as a return value so callers do
// not need a type assertion to detect rejection in future mode additions).
func (l *Loop) Watch(n Notifier) bool {
	l.watchCount.Add(1)
	l.mu.Lock()
	l.watchers = append(l.watchers, n)
	l.mu.Unlock()
	return true
}

// StartCount, WakeCount, WaitCount, and WatchCount expose call counters
// for test assertions.
func (l *Loop) StartCount() int64 { return l.startCount.Load() }
func (l *Loop) WakeCount() int64  { return l.wakeCount.Load() }
func (l *Loop) WaitCount() int64  { return l.waitCount.Load() }
func (l *Loop) WatchCount() int64 { return l.watchCount.Load() }

// Stop releases the periodic ticker, if one was armed. It does not trip
// the breaker; that is the runtime's responsibility.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
	l.started = false
}
