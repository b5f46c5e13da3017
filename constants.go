package arc

import "github.com/arclabs/arc-runtime/internal/constants"

// Re-exported defaults for the public API.
const (
	DefaultInputQueueCapacity  = constants.DefaultInputQueueCapacity
	DefaultOutputQueueCapacity = constants.DefaultOutputQueueCapacity
	DefaultLoopIntervalNs      = constants.DefaultLoopIntervalNs
	DefaultRTPriority          = constants.DefaultRTPriority
	UnpinnedCPUAffinity        = constants.UnpinnedCPUAffinity
	DefaultSchedulerPasses     = constants.DefaultSchedulerPasses
)
