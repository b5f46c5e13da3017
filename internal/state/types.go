// Package state implements the Arc runtime's shared data model: channel
// ring-state, per-node I/O buffers addressed by Handle, watermark
// bookkeeping, and per-node persistent storage.
package state

import (
	"github.com/google/uuid"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// Handle addresses an input or output slot of a node: the pair
// (node_key, param_name).
type Handle struct {
	NodeKey string
	Param   string
}

// Edge is a directed, immutable-after-build connection from a producer's
// output Handle to a consumer's input Handle.
type Edge struct {
	Source Handle
	Target Handle
}

// ParamSpec describes one input or output slot of a node.
type ParamSpec struct {
	Name       string
	DataType   telem.DataType
	HasDefault bool
	Default    telem.SampleValue // meaningful only if HasDefault
}

// NodeMetadata declares a node's identity and its input/output contract,
// supplied once at register_node time.
type NodeMetadata struct {
	Key     string
	Type    string
	Inputs  []ParamSpec
	Outputs []ParamSpec
}

// NodeOutputBuffer is a node's exclusively-owned output: the series it
// produced on its most recent firing, a parallel timestamp series, and an
// identity that changes every time the buffer's content is replaced. Other
// nodes only ever see read-only snapshots of this buffer via refresh_inputs.
type NodeOutputBuffer struct {
	Series     *telem.Series
	Timestamps *telem.Series
	Identity   uuid.UUID
}

// NodeInputView is a consumer-owned snapshot of an upstream output, taken
// at the time refresh_inputs last observed a new watermark. It is replaced
// wholesale, never mutated in place.
type NodeInputView struct {
	Series     *telem.Series
	Timestamps *telem.Series
}

// Watermark is a per-input progress marker: the producer buffer's size and
// identity as last observed by refresh_inputs. refresh_inputs triggers
// exactly when this pair changes.
type Watermark struct {
	Size     int
	Identity uuid.UUID
}

func (w Watermark) equal(o Watermark) bool {
	return w.Size == o.Size && w.Identity == o.Identity
}

// nodeState is the State package's private bookkeeping for one registered
// node: its metadata, output buffers, current input views, watermarks, and
// default-consumption flags.
type nodeState struct {
	meta             NodeMetadata
	outputs          map[string]*NodeOutputBuffer
	inputs           map[string]*NodeInputView
	watermarks       map[string]Watermark
	defaultConsumed  map[string]bool
	everFired        bool
}

func newNodeState(meta NodeMetadata) *nodeState {
	ns := &nodeState{
		meta:            meta,
		outputs:         make(map[string]*NodeOutputBuffer, len(meta.Outputs)),
		inputs:          make(map[string]*NodeInputView, len(meta.Inputs)),
		watermarks:      make(map[string]Watermark, len(meta.Inputs)),
		defaultConsumed: make(map[string]bool, len(meta.Inputs)),
	}
	for _, out := range meta.Outputs {
		ns.outputs[out.Name] = &NodeOutputBuffer{
			Series:     telem.NewSeries(out.DataType, 0),
			Timestamps: telem.NewSeries(telem.Timestamp, 0),
		}
	}
	return ns
}

// channelEntry holds one registered channel's type and its recent-values
// ring (the MultiSeries accumulated since the last flush).
type channelEntry struct {
	dataType telem.DataType
	reads    *telem.MultiSeries
}
