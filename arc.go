// Package arc is the Runtime facade: construction, lifecycle, and the
// write/read surface external callers use to drive a compiled dataflow
// graph. It wires together internal/state, internal/scheduler,
// internal/loop, internal/queue, and internal/wasmhost the way the
// teacher's backend.go wires a Device together from a controller, queue
// runners, and an Options bundle.
package arc

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"

	"github.com/arclabs/arc-runtime/internal/breaker"
	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/logging"
	"github.com/arclabs/arc-runtime/internal/loop"
	"github.com/arclabs/arc-runtime/internal/queue"
	"github.com/arclabs/arc-runtime/internal/retrieval"
	"github.com/arclabs/arc-runtime/internal/scheduler"
	"github.com/arclabs/arc-runtime/internal/state"
	"github.com/arclabs/arc-runtime/internal/telem"
	"github.com/arclabs/arc-runtime/internal/wasmhost"
)

// ChannelDigest is what the channel-retrieval callback reports for one
// channel: its index in the cluster and its element type.
type ChannelDigest = retrieval.Digest

// RetrieveChannelsFunc is the outbound channel-retrieval callback: the
// runtime calls it once at construction to learn data types and index the
// channels its graph reads and writes.
type RetrieveChannelsFunc func(keys []telem.ChannelKey) ([]ChannelDigest, error)

// ErrorHandler receives every non-fatal condition the runtime surfaces.
// Deduplication is the host's problem; the runtime calls it synchronously
// on the tick thread, and from Write on the caller's goroutine when a push
// fails, so it must not block.
type ErrorHandler func(error)

// NodeSpec is one compiled graph node: its I/O contract and its WASM body.
type NodeSpec struct {
	Meta state.NodeMetadata
	WASM []byte
}

// GraphSpec is the compiled dataflow graph a Runtime executes: a node set,
// the edges between their inputs and outputs, and the number of
// fixed-point passes the scheduler runs per tick (0 defaults to 1).
type GraphSpec struct {
	Nodes  []NodeSpec
	Edges  []state.Edge
	Passes int
}

// Runtime drives one compiled graph: it owns the tick thread, the notify
// thread, the input/output frame queues, and the WASM sandbox the graph's
// nodes run in.
type Runtime struct {
	cfg Config

	state   *state.State
	sched   *scheduler.Scheduler
	host    *wasmhost.Host
	wazero  wazero.Runtime
	nodes   []*wasmNode
	metrics *Metrics
	logger  *logging.Logger

	errorHandler ErrorHandler

	mu          sync.Mutex
	running     bool
	everStarted bool
	startCount  int64
	stopCount   int64

	breaker *breaker.Breaker
	loop    *loop.Loop
	inputQ  *queue.FrameQueue
	outputQ *queue.FrameQueue

	tickWG   sync.WaitGroup
	notifyWG sync.WaitGroup
}

// New constructs a Runtime from a compiled graph. It calls
// retrieveChannels once to resolve channelKeys to digests, registers
// channels/nodes/edges against a fresh State, compiles every node's WASM
// body against a shared wazero runtime with the "arc" host module
// registered, and builds the scheduler's topological order. A cyclic
// graph, a channel-retrieval failure, or a WASM compile/instantiate
// failure are all fatal: New returns an error and the runtime never
// reaches a running state.
func New(
	ctx context.Context,
	cfg Config,
	graph GraphSpec,
	channelKeys []telem.ChannelKey,
	retrieveChannels RetrieveChannelsFunc,
	errorHandler ErrorHandler,
	logger *logging.Logger,
) (*Runtime, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.Default()
	}
	if errorHandler == nil {
		errorHandler = func(error) {}
	}

	digests, err := retrieveChannels(channelKeys)
	if err != nil {
		return nil, fmt.Errorf("arc: channel retrieval failed: %w", err)
	}

	st := state.New()
	for _, d := range digests {
		st.RegisterChannel(d.Key, d.DataType)
	}
	for _, n := range graph.Nodes {
		st.RegisterNode(n.Meta)
	}
	for _, e := range graph.Edges {
		st.AddEdge(e)
	}

	wazeroRuntime := wazero.NewRuntime(ctx)
	host := wasmhost.NewHost(st, errorHandler, logger)
	if _, err := host.Instantiate(ctx, wazeroRuntime); err != nil {
		wazeroRuntime.Close(ctx)
		return nil, fmt.Errorf("arc: failed to register host bindings: %w", err)
	}

	nodeKeys := make([]string, 0, len(graph.Nodes))
	schedulerNodes := make(map[string]scheduler.Node, len(graph.Nodes))
	wasmNodes := make([]*wasmNode, 0, len(graph.Nodes))
	for _, spec := range graph.Nodes {
		wn, err := newWASMNode(ctx, wazeroRuntime, spec.Meta.Key, spec.WASM)
		if err != nil {
			wazeroRuntime.Close(ctx)
			return nil, fmt.Errorf("arc: %w", err)
		}
		nodeKeys = append(nodeKeys, spec.Meta.Key)
		schedulerNodes[spec.Meta.Key] = wn
		wasmNodes = append(wasmNodes, wn)
	}

	dependsOn := dependsOnFromEdges(graph.Edges)
	sched, err := scheduler.New(nodeKeys, dependsOn, schedulerNodes, graph.Passes)
	if err != nil {
		wazeroRuntime.Close(ctx)
		return nil, fmt.Errorf("arc: %w", err)
	}

	r := &Runtime{
		cfg:          cfg,
		state:        st,
		sched:        sched,
		host:         host,
		wazero:       wazeroRuntime,
		nodes:        wasmNodes,
		metrics:      NewMetrics(),
		logger:       logger,
		errorHandler: errorHandler,
		inputQ:       queue.New(cfg.InputQueueCapacity, errs.QueueFullInput),
		outputQ:      queue.New(cfg.OutputQueueCapacity, errs.QueueFullOutput),
		loop:         loop.New(cfg.loopConfig(), logger),
		breaker:      breaker.New(),
	}
	return r, nil
}

// dependsOnFromEdges builds the scheduler's "node key -> upstream producer
// node keys" map from the graph's edge list, deduplicating multi-edges
// between the same pair of nodes.
func dependsOnFromEdges(edges []state.Edge) map[string][]string {
	seen := make(map[string]map[string]bool)
	dependsOn := make(map[string][]string)
	for _, e := range edges {
		target, source := e.Target.NodeKey, e.Source.NodeKey
		if seen[target] == nil {
			seen[target] = make(map[string]bool)
		}
		if seen[target][source] {
			continue
		}
		seen[target][source] = true
		dependsOn[target] = append(dependsOn[target], source)
	}
	return dependsOn
}

// Metrics returns the runtime's metrics instance.
func (r *Runtime) Metrics() *Metrics {
	return r.metrics
}

// MetricsSnapshot returns a point-in-time snapshot of runtime metrics.
func (r *Runtime) MetricsSnapshot() MetricsSnapshot {
	return r.metrics.Snapshot()
}
