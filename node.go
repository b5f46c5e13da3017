package arc

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/arclabs/arc-runtime/internal/state"
)

// wasmNode adapts one compiled, instantiated WASM module into a
// scheduler.Node: Invoke calls the module's exported "invoke" function,
// which does its own channel/state/arithmetic work against the bindings
// internal/wasmhost registered on the shared runtime. A guest panic (see
// internal/wasmhost's panic hook) surfaces here as a non-nil error from
// Call, matching the "per-tick: abort that node's invocation" severity
// tier.
type wasmNode struct {
	key    string
	module api.Module
	invoke api.Function
}

// newWASMNode compiles and instantiates one node's WASM body against rt,
// which must already have the "arc" host module registered (see
// wasmhost.Host.Instantiate). Every node gets its own module instance so
// each can hold private globals/memory, but all share the one host module.
func newWASMNode(ctx context.Context, rt wazero.Runtime, key string, code []byte) (*wasmNode, error) {
	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("node %s: compile: %w", key, err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(key))
	if err != nil {
		return nil, fmt.Errorf("node %s: instantiate: %w", key, err)
	}
	fn := mod.ExportedFunction("invoke")
	if fn == nil {
		return nil, fmt.Errorf("node %s: missing exported \"invoke\" function", key)
	}
	return &wasmNode{key: key, module: mod, invoke: fn}, nil
}

// Invoke implements scheduler.Node. The scheduler has already set
// st.SetCurrentNodeKey(n.key) before calling this.
func (n *wasmNode) Invoke(st *state.State) error {
	_, err := n.invoke.Call(context.Background())
	return err
}

func (n *wasmNode) Close(ctx context.Context) error {
	return n.module.Close(ctx)
}
