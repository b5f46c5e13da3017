package state

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/telem"
)

// State is the single source of truth for all per-tick data that is not
// loop control state: the ring of recent incoming channel values, pending
// outgoing channel writes, per-node I/O buffers addressable by Handle, and
// per-node persistent storage.
type State struct {
	mu       sync.RWMutex
	channels map[telem.ChannelKey]*channelEntry
	nodes    map[string]*nodeState
	edges    map[Handle]Handle   // target -> source
	outEdges map[Handle][]Handle // source -> targets

	writesMu sync.Mutex
	writes   *telem.Frame

	persistent *persistentStore

	currentNode string
}

// New returns an empty State ready for register_channel/register_node.
func New() *State {
	return &State{
		channels:   make(map[telem.ChannelKey]*channelEntry),
		nodes:      make(map[string]*nodeState),
		edges:      make(map[Handle]Handle),
		outEdges:   make(map[Handle][]Handle),
		writes:     telem.NewFrame(),
		persistent: newPersistentStore(),
	}
}

// RegisterChannel declares a channel of the given type. Re-registering an
// existing key idempotently overwrites its type and resets its read ring.
func (s *State) RegisterChannel(key telem.ChannelKey, dt telem.DataType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[key] = &channelEntry{dataType: dt, reads: telem.NewMultiSeries(dt)}
}

// RegisterNode declares a node, its inputs/outputs and their types, and
// pre-allocates its output buffers. Re-registering an existing node key
// replaces its state.
func (s *State) RegisterNode(meta NodeMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[meta.Key] = newNodeState(meta)
}

// AddEdge declares a producer-to-consumer edge, used by readiness checks
// and by RefreshInputs. Each target Handle accepts at most one source.
func (s *State) AddEdge(e Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges[e.Target] = e.Source
	s.outEdges[e.Source] = append(s.outEdges[e.Source], e.Target)
}

// IncomingEdge returns the source Handle feeding target, if any.
func (s *State) IncomingEdge(target Handle) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src, ok := s.edges[target]
	return src, ok
}

// OutgoingEdges returns every target Handle fed by source.
func (s *State) OutgoingEdges(source Handle) []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Handle(nil), s.outEdges[source]...)
}

// Ingest appends each series in the frame to the corresponding channel's
// MultiSeries. Series addressed to channels that were never registered are
// silently dropped, per the "hot-add tolerant" ingest contract.
func (s *State) Ingest(f *telem.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, key := range f.Keys {
		ch, ok := s.channels[key]
		if !ok {
			continue
		}
		ch.reads.Push(f.Series[i])
	}
}

// ReadChannel returns a deep copy of channel key's accumulated MultiSeries
// and whether the read succeeded. It fails with CHANNEL_NOT_FOUND for an
// unregistered key and NO_DATA for a registered-but-empty channel.
func (s *State) ReadChannel(key telem.ChannelKey) (*telem.MultiSeries, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[key]
	if !ok {
		return nil, errs.NewChannel("read_channel", uint32(key), errs.ChannelNotFound, "channel not registered")
	}
	if ch.reads.Empty() {
		return nil, errs.NewChannel("read_channel", uint32(key), errs.NoData, "channel has no data")
	}
	cp := telem.NewMultiSeries(ch.dataType)
	for _, series := range ch.reads.All() {
		cp.Push(series.DeepCopy())
	}
	return cp, nil
}

// SetCurrentNodeKey sets the contextual "which node is currently executing"
// used by the WASM bindings to route persistent-state calls.
func (s *State) SetCurrentNodeKey(k string) {
	s.mu.Lock()
	s.currentNode = k
	s.mu.Unlock()
}

// CurrentNodeKey returns the node key set by the most recent
// SetCurrentNodeKey call.
func (s *State) CurrentNodeKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentNode
}

// SetOutput replaces node's output buffer for the named param with new
// content, assigning it a fresh identity so downstream watermarks observe
// the change even if size is unchanged from the prior tick.
func (s *State) SetOutput(nodeKey, param string, series, timestamps *telem.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.nodes[nodeKey]
	if !ok {
		return
	}
	ns.outputs[param] = &NodeOutputBuffer{
		Series:     series,
		Timestamps: timestamps,
		Identity:   uuid.New(),
	}
}

// Output returns a node's current output buffer for the named param.
func (s *State) Output(nodeKey, param string) (*NodeOutputBuffer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.nodes[nodeKey]
	if !ok {
		return nil, false
	}
	buf, ok := ns.outputs[param]
	return buf, ok
}

// Input returns a node's current input view for the named param, as last
// populated by RefreshInputs.
func (s *State) Input(nodeKey, param string) (*NodeInputView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.nodes[nodeKey]
	if !ok {
		return nil, false
	}
	v, ok := ns.inputs[param]
	return v, ok
}

// RefreshInputs implements the watermark algorithm: for each input param of
// nodeKey, if connected and the producer's (size, identity) pair advanced,
// copy the producer's output into this node's input view and mark
// triggered; if unconnected and the configured default has never been
// consumed, install the default and mark triggered. It returns whether any
// input triggered. While any connected producer's output is still empty,
// nothing is copied and it returns false, so a multi-input node becomes
// ready only once every connected producer has output.
func (s *State) RefreshInputs(nodeKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.nodes[nodeKey]
	if !ok {
		return false
	}

	for _, in := range ns.meta.Inputs {
		src, connected := s.edges[Handle{NodeKey: nodeKey, Param: in.Name}]
		if !connected {
			continue
		}
		if producer, ok := s.nodes[src.NodeKey]; ok {
			if buf, ok := producer.outputs[src.Param]; ok && buf.Series.Len() == 0 {
				return false
			}
		}
	}

	triggered := false
	for _, in := range ns.meta.Inputs {
		target := Handle{NodeKey: nodeKey, Param: in.Name}
		if src, connected := s.edges[target]; connected {
			producer, ok := s.nodes[src.NodeKey]
			if !ok {
				continue
			}
			buf, ok := producer.outputs[src.Param]
			if !ok {
				continue
			}
			newWM := Watermark{Size: buf.Series.Len(), Identity: buf.Identity}
			if !ns.watermarks[in.Name].equal(newWM) {
				ns.inputs[in.Name] = &NodeInputView{
					Series:     buf.Series.DeepCopy(),
					Timestamps: buf.Timestamps.DeepCopy(),
				}
				ns.watermarks[in.Name] = newWM
				triggered = true
			}
		} else if in.HasDefault && !ns.defaultConsumed[in.Name] {
			defaultSeries := telem.NewSeries(in.DataType, 1)
			writeScalar(defaultSeries, in.Default)
			ns.inputs[in.Name] = &NodeInputView{
				Series:     defaultSeries,
				Timestamps: telem.NewSeries(telem.Timestamp, 0),
			}
			ns.defaultConsumed[in.Name] = true
			triggered = true
		}
	}
	return triggered
}

// HasEverFired reports whether a node has been invoked at least once,
// which the scheduler uses (alongside RefreshInputs' trigger result) to
// decide whether a node with no inputs still fires on its first tick.
func (s *State) HasEverFired(nodeKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ns, ok := s.nodes[nodeKey]
	if !ok {
		return false
	}
	return ns.everFired
}

// MarkFired records that nodeKey has now fired at least once.
func (s *State) MarkFired(nodeKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ns, ok := s.nodes[nodeKey]; ok {
		ns.everFired = true
	}
}

// EnqueueWrite stages an outbound channel write for the post-tick flush.
func (s *State) EnqueueWrite(key telem.ChannelKey, series *telem.Series) {
	s.writesMu.Lock()
	defer s.writesMu.Unlock()
	s.writes.Append(key, series)
}

// Flush returns the frame of outgoing writes staged since the last flush,
// resets each channel's read ring to only its most recent series so
// consumers see the latest sample next tick, and clears the write buffer.
func (s *State) Flush() *telem.Frame {
	s.mu.Lock()
	for _, ch := range s.channels {
		ch.reads.Flush()
	}
	s.mu.Unlock()

	s.writesMu.Lock()
	out := s.writes
	s.writes = telem.NewFrame()
	s.writesMu.Unlock()

	return out
}

// Persistent returns the node-scoped persistent store backing
// state_load_T/state_store_T and their series/string variants.
func (s *State) Persistent() *PersistentAccessor {
	return &PersistentAccessor{s: s}
}

// writeScalar installs a single SampleValue into an empty, freshly
// allocated series, dispatching on data type.
func writeScalar(s *telem.Series, v telem.SampleValue) {
	switch s.DataType() {
	case telem.Uint8, telem.Uint16, telem.Uint32, telem.Uint64:
		s.WriteUint(toUint64(v))
	case telem.Int8, telem.Int16, telem.Int32, telem.Int64, telem.Timestamp:
		s.WriteInt(toInt64(v))
	case telem.Float32, telem.Float64:
		s.WriteFloat(toFloat64(v))
	case telem.String, telem.JSON:
		if str, ok := v.(string); ok {
			s.WriteString(str)
		} else {
			s.WriteString("")
		}
	}
}

func toUint64(v telem.SampleValue) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case uint32:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint8:
		return uint64(n)
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	default:
		return 0
	}
}

func toInt64(v telem.SampleValue) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int8:
		return int64(n)
	case int:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v telem.SampleValue) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
