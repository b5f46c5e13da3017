// Package scheduler drives a dataflow graph to a fixed point on each tick:
// nodes run in topological order, and a node fires only when its inputs
// have advanced or it has never fired.
package scheduler

import (
	"fmt"

	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/state"
)

// Node is the runtime's view of a graph vertex implementation: a
// synchronous, potentially-erroring invocation. Node bodies (WASM-sandboxed
// user code or native built-ins) implement this interface.
type Node interface {
	// Invoke runs the node body for one firing. st.CurrentNodeKey() names
	// the node for the duration of the call.
	Invoke(st *state.State) error
}

// ErrorHandler receives every non-fatal error surfaced during a tick. It
// must not block; the scheduler calls it synchronously on the tick thread.
type ErrorHandler func(error)

// Scheduler holds a precomputed topological order over a fixed node set
// and drives fixed-point passes against a State.
type Scheduler struct {
	order  []string // topologically sorted node keys
	nodes  map[string]Node
	passes int
}

// New constructs a Scheduler from an IR expressed as dependsOn (consumer
// node key -> its upstream producer node keys, deduplicated by caller) and
// a map of node key to implementation. It rejects cyclic graphs at construction, since the
// core assumes an acyclic dataflow graph.
func New(nodeKeys []string, dependsOn map[string][]string, nodes map[string]Node, passes int) (*Scheduler, error) {
	order, err := topoSort(nodeKeys, dependsOn)
	if err != nil {
		return nil, err
	}
	if passes <= 0 {
		passes = 1
	}
	return &Scheduler{order: order, nodes: nodes, passes: passes}, nil
}

// topoSort performs a Kahn's-algorithm sort over nodeKeys given
// dependsOn[k] = the keys that must run before k (i.e. k's upstream
// producers). It returns an error if a cycle is present.
func topoSort(nodeKeys []string, dependsOn map[string][]string) ([]string, error) {
	indegree := make(map[string]int, len(nodeKeys))
	dependents := make(map[string][]string, len(nodeKeys))
	for _, k := range nodeKeys {
		indegree[k] = len(dependsOn[k])
	}
	for k, deps := range dependsOn {
		for _, d := range deps {
			dependents[d] = append(dependents[d], k)
		}
	}

	var queue []string
	for _, k := range nodeKeys {
		if indegree[k] == 0 {
			queue = append(queue, k)
		}
	}

	var order []string
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		order = append(order, k)
		for _, dep := range dependents[k] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(nodeKeys) {
		return nil, fmt.Errorf("scheduler: graph contains a cycle among %d unresolved nodes", len(nodeKeys)-len(order))
	}
	return order, nil
}

// Tick runs one or more fixed-point passes over the topological order.
// For each node, it sets the current-node pointer, refreshes inputs, and
// invokes the node if any input triggered or the node has never fired.
// Node errors are surfaced to handle but never abort the tick. It returns
// the total number of node invocations across all passes, for metrics.
func (s *Scheduler) Tick(st *state.State, handle ErrorHandler) int {
	fired := 0
	for pass := 0; pass < s.passes; pass++ {
		anyFired := false
		for _, key := range s.order {
			st.SetCurrentNodeKey(key)
			triggered := st.RefreshInputs(key)
			firstTick := !st.HasEverFired(key)
			if !triggered && !firstTick {
				continue
			}
			node, ok := s.nodes[key]
			if !ok {
				continue
			}
			anyFired = true
			fired++
			st.MarkFired(key)
			if err := node.Invoke(st); err != nil {
				if handle != nil {
					wrapped := errs.Wrap("invoke", err)
					wrapped.NodeKey = key
					handle(wrapped)
				}
			}
		}
		if !anyFired {
			break
		}
	}
	return fired
}

// Order returns the precomputed topological order, for diagnostics and
// tests.
func (s *Scheduler) Order() []string {
	return append([]string(nil), s.order...)
}
