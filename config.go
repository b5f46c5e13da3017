package arc

import (
	"time"

	"github.com/arclabs/arc-runtime/internal/constants"
	"github.com/arclabs/arc-runtime/internal/loop"
)

// LoopConfig carries the tick driver's mode and realtime-scheduling
// parameters, mirroring internal/loop.Config at the public surface.
type LoopConfig struct {
	// Mode selects BUSY_WAIT, HIGH_RATE, RT_EVENT, HYBRID, or EVENT_DRIVEN.
	Mode loop.Mode

	// IntervalNs is the HIGH_RATE/HYBRID tick interval in nanoseconds.
	IntervalNs uint64

	// RTPriority is the SCHED_FIFO priority applied on RT_EVENT/HYBRID.
	RTPriority int32

	// CPUAffinity pins the tick thread to a CPU on RT_EVENT/HYBRID.
	// UnpinnedCPUAffinity (-1) means no pinning is requested.
	CPUAffinity int32
}

// BreakerConfig carries the startup-reconnection retry schedule. It plays
// no part in the tick path.
type BreakerConfig struct {
	BaseInterval time.Duration
	MaxInterval  time.Duration
	MaxRetries   int
	Scale        float64
}

// Config is the full set of construction-time parameters for a Runtime.
type Config struct {
	InputQueueCapacity  int
	OutputQueueCapacity int
	Loop                LoopConfig
	Breaker             BreakerConfig
}

// DefaultConfig returns the enumerated defaults: 256-entry queues,
// HIGH_RATE at 10ms, realtime priority 47 (unused outside RT_EVENT/HYBRID),
// unpinned CPU affinity, and the default startup backoff schedule.
func DefaultConfig() Config {
	return Config{
		InputQueueCapacity:  constants.DefaultInputQueueCapacity,
		OutputQueueCapacity: constants.DefaultOutputQueueCapacity,
		Loop: LoopConfig{
			Mode:        loop.HighRate,
			IntervalNs:  constants.DefaultLoopIntervalNs,
			RTPriority:  constants.DefaultRTPriority,
			CPUAffinity: constants.UnpinnedCPUAffinity,
		},
		Breaker: BreakerConfig{
			BaseInterval: constants.DefaultBreakerBaseInterval,
			MaxInterval:  constants.DefaultBreakerMaxInterval,
			MaxRetries:   constants.DefaultBreakerMaxRetries,
			Scale:        constants.DefaultBreakerScale,
		},
	}
}

// withDefaults fills zero-valued queue capacities, loop interval, realtime
// priority, and breaker intervals/scale with their DefaultConfig
// counterparts, so callers may supply a partially-populated Config.
// Loop.Mode, Loop.CPUAffinity, and Breaker.MaxRetries are taken as given:
// their zero values (BUSY_WAIT, CPU 0, unlimited retries) are kept.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.InputQueueCapacity <= 0 {
		c.InputQueueCapacity = d.InputQueueCapacity
	}
	if c.OutputQueueCapacity <= 0 {
		c.OutputQueueCapacity = d.OutputQueueCapacity
	}
	if c.Loop.IntervalNs == 0 {
		c.Loop.IntervalNs = d.Loop.IntervalNs
	}
	if c.Loop.RTPriority == 0 {
		c.Loop.RTPriority = d.Loop.RTPriority
	}
	// CPUAffinity has no zero-value-as-unset defaulting: 0 is CPU 0, a
	// legitimate pin target, not "unset". A caller who wants the default
	// (unpinned) must set constants.UnpinnedCPUAffinity explicitly.
	if c.Breaker.BaseInterval == 0 {
		c.Breaker.BaseInterval = d.Breaker.BaseInterval
	}
	if c.Breaker.MaxInterval == 0 {
		c.Breaker.MaxInterval = d.Breaker.MaxInterval
	}
	if c.Breaker.Scale == 0 {
		c.Breaker.Scale = d.Breaker.Scale
	}
	return c
}

func (c Config) loopConfig() loop.Config {
	return loop.Config{
		Mode:        c.Loop.Mode,
		Interval:    time.Duration(c.Loop.IntervalNs),
		RTPriority:  int(c.Loop.RTPriority),
		CPUAffinity: int(c.Loop.CPUAffinity),
	}
}
