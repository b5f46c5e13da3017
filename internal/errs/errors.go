// Package errs defines the Arc runtime's structured error type and error
// taxonomy, shared by every internal package so each can report failures
// without importing the root package.
package errs

import (
	"errors"
	"fmt"
)

// Error is a structured Arc runtime error carrying the operation that
// failed, the graph entities involved, and a coarse error Kind usable with
// errors.Is.
type Error struct {
	Op         string
	Kind       Kind
	NodeKey    string
	ChannelKey uint32
	hasChannel bool
	Msg        string
	Inner      error
}

// HasChannelKey reports whether ChannelKey is meaningful for this error
// (channel key 0 is a valid key, so a bool flag distinguishes "unset").
func (e *Error) HasChannelKey() bool { return e.hasChannel }

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.NodeKey != "" {
		parts = append(parts, fmt.Sprintf("node=%s", e.NodeKey))
	}
	if e.hasChannel {
		parts = append(parts, fmt.Sprintf("channel=%d", e.ChannelKey))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Kind)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("arc: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("arc: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error { return e.Inner }

// Is supports comparison against a bare Kind or another *Error by Kind.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if k, ok := target.(Kind); ok {
		return e.Kind == k
	}
	if te, ok := target.(*Error); ok {
		return e.Kind == te.Kind
	}
	return false
}

// Kind is the coarse error taxonomy described in the error handling
// design: queue back-pressure, per-operation sentinels, per-tick WASM
// failures, and hardware-integration conditions.
type Kind string

// Error implements the error interface directly, so a bare Kind value can
// be passed to errors.Is without wrapping it in an *Error first.
func (k Kind) Error() string { return string(k) }

const (
	QueueFullInput         Kind = "QUEUE_FULL_INPUT"
	QueueFullOutput        Kind = "QUEUE_FULL_OUTPUT"
	RuntimeClosed          Kind = "RUNTIME_CLOSED"
	ChannelNotFound        Kind = "CHANNEL_NOT_FOUND"
	NoData                 Kind = "NO_DATA"
	WASMPanic              Kind = "WASM_PANIC"
	TemporaryHardwareError Kind = "TEMPORARY_HARDWARE_ERROR"
	CriticalHardwareError  Kind = "CRITICAL_HARDWARE_ERROR"
)

// New creates a new structured error with no node/channel context.
func New(op string, kind Kind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// NewNode creates an error scoped to a specific node.
func NewNode(op, nodeKey string, kind Kind, msg string) *Error {
	return &Error{Op: op, NodeKey: nodeKey, Kind: kind, Msg: msg}
}

// NewChannel creates an error scoped to a specific channel.
func NewChannel(op string, channelKey uint32, kind Kind, msg string) *Error {
	return &Error{Op: op, ChannelKey: channelKey, hasChannel: true, Kind: kind, Msg: msg}
}

// Wrap wraps an existing error with Arc context, preserving an inner
// *Error's Kind/node/channel fields if present.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if ae, ok := inner.(*Error); ok {
		return &Error{
			Op:         op,
			NodeKey:    ae.NodeKey,
			ChannelKey: ae.ChannelKey,
			hasChannel: ae.hasChannel,
			Kind:       ae.Kind,
			Msg:        ae.Msg,
			Inner:      ae.Inner,
		}
	}
	return &Error{Op: op, Kind: TemporaryHardwareError, Msg: inner.Error(), Inner: inner}
}

// IsKind checks whether err matches a specific Kind, unwrapping as
// errors.As would.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return errors.Is(err, kind)
}
