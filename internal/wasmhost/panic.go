package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/arclabs/arc-runtime/internal/errs"
)

// registerPanicFn exports panic(msg_ptr, msg_len), the hook a sandboxed
// node calls when it wants to abort its own invocation with a message. It
// reports WASM_PANIC to the error handler and then traps, so the node's
// current run fails; the runtime continues ticking other nodes.
func (h *Host) registerPanicFn(b wazero.HostModuleBuilder) {
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, msgPtr, msgLen uint32) {
			msg := "wasm guest panic"
			if buf, ok := mod.Memory().Read(msgPtr, msgLen); ok {
				msg = string(buf)
			}
			var nodeKey string
			if h.state != nil {
				nodeKey = h.state.CurrentNodeKey()
			}
			err := errs.NewNode("wasm_panic", nodeKey, errs.WASMPanic, msg)
			h.reportError(err)
			panic(err)
		}).
		Export("panic")
}
