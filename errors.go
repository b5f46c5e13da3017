package arc

import "github.com/arclabs/arc-runtime/internal/errs"

// Error is the runtime's structured error type. See internal/errs for the
// implementation shared by every internal package.
type Error = errs.Error

// ErrorKind is the coarse error taxonomy described in the error handling
// design: queue back-pressure, per-operation sentinels, per-tick WASM
// failures, and hardware-integration conditions.
type ErrorKind = errs.Kind

const (
	KindQueueFullInput         = errs.QueueFullInput
	KindQueueFullOutput        = errs.QueueFullOutput
	KindRuntimeClosed          = errs.RuntimeClosed
	KindChannelNotFound        = errs.ChannelNotFound
	KindNoData                 = errs.NoData
	KindWASMPanic              = errs.WASMPanic
	KindTemporaryHardwareError = errs.TemporaryHardwareError
	KindCriticalHardwareError  = errs.CriticalHardwareError
)

// NewError creates a new structured error with no node/channel context.
func NewError(op string, kind ErrorKind, msg string) *Error {
	return errs.New(op, kind, msg)
}

// NewNodeError creates an error scoped to a specific node.
func NewNodeError(op, nodeKey string, kind ErrorKind, msg string) *Error {
	return errs.NewNode(op, nodeKey, kind, msg)
}

// NewChannelError creates an error scoped to a specific channel.
func NewChannelError(op string, channelKey uint32, kind ErrorKind, msg string) *Error {
	return errs.NewChannel(op, channelKey, kind, msg)
}

// WrapError wraps an existing error with Arc context, preserving an inner
// *Error's Kind/node/channel fields if present.
func WrapError(op string, inner error) *Error {
	return errs.Wrap(op, inner)
}

// IsKind checks whether err matches a specific ErrorKind.
func IsKind(err error, kind ErrorKind) bool {
	return errs.IsKind(err, kind)
}
