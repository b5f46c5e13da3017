// Package constants holds default configuration values for the Arc runtime.
package constants

import "time"

// Default queue and loop configuration.
const (
	// DefaultInputQueueCapacity is the default bound on the ingest queue.
	DefaultInputQueueCapacity = 256

	// DefaultOutputQueueCapacity is the default bound on the egress queue.
	DefaultOutputQueueCapacity = 256

	// DefaultLoopIntervalNs is the default HIGH_RATE tick interval (10ms).
	DefaultLoopIntervalNs = 10_000_000

	// DefaultRTPriority is the default realtime scheduling priority for
	// RT_EVENT and HYBRID loop modes.
	DefaultRTPriority = 47

	// UnpinnedCPUAffinity indicates no CPU pinning is requested.
	UnpinnedCPUAffinity = -1

	// DefaultSchedulerPasses is the number of fixed-point passes the
	// scheduler performs per tick. The IR is already a DAG, so one pass
	// suffices by default.
	DefaultSchedulerPasses = 1
)

// Startup reconnection / breaker timing.
const (
	// DefaultBreakerBaseInterval is the first retry delay for the startup
	// reconnection breaker.
	DefaultBreakerBaseInterval = 50 * time.Millisecond

	// DefaultBreakerMaxInterval caps the exponential backoff.
	DefaultBreakerMaxInterval = 5 * time.Second

	// DefaultBreakerMaxRetries is the number of retries before the breaker
	// gives up and reports a fatal error. Zero means unlimited.
	DefaultBreakerMaxRetries = 0

	// DefaultBreakerScale is the exponential backoff multiplier.
	DefaultBreakerScale = 2.0
)
