package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// registerStringFns exports string_create, string_get, string_len,
// string_equal, and string_concat. Guest strings cross the ABI boundary as
// (ptr, len) pairs into the WASM instance's linear memory, read and
// written through the api.Module argument wazero supplies when a
// host function's second parameter is api.Module.
func (h *Host) registerStringFns(b wazero.HostModuleBuilder) {
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, ptr, length uint32) uint32 {
			buf, ok := mod.Memory().Read(ptr, length)
			if !ok {
				return 0
			}
			return h.arena.PutString(string(buf))
		}).
		Export("string_create")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, handle, outPtr, outCap uint32) uint32 {
			s, ok := h.arena.GetString(handle)
			if !ok {
				return 0
			}
			n := uint32(len(s))
			if n > outCap {
				n = outCap
			}
			if !mod.Memory().Write(outPtr, []byte(s[:n])) {
				return 0
			}
			return n
		}).
		Export("string_get")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, handle uint32) uint32 {
			s, ok := h.arena.GetString(handle)
			if !ok {
				return 0
			}
			return uint32(len(s))
		}).
		Export("string_len")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH, bH uint32) uint32 {
			a, okA := h.arena.GetString(aH)
			b, okB := h.arena.GetString(bH)
			if !okA || !okB {
				return 0
			}
			if a == b {
				return 1
			}
			return 0
		}).
		Export("string_equal")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH, bH uint32) uint32 {
			a, okA := h.arena.GetString(aH)
			b, okB := h.arena.GetString(bH)
			if !okA {
				a = ""
			}
			if !okB {
				b = ""
			}
			return h.arena.PutString(a + b)
		}).
		Export("string_concat")
}
