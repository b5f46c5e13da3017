// Package wasmhost implements the host side of the WASM sandbox bindings:
// a handle-addressed arena for transient sample arrays and strings, the
// full typed arithmetic/comparison/slicing surface over telem.Series, and
// the channel and per-node persistent-state calls a sandboxed node body
// makes back into the runtime. Every exported function is registered
// through wazero's public HostModuleBuilder/WithFunc API -- never wazero's
// internal packages -- under the module name "arc".
package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/arclabs/arc-runtime/internal/logging"
	"github.com/arclabs/arc-runtime/internal/state"
	"github.com/arclabs/arc-runtime/internal/telem"
)

// numericTypes lists the ten primitive element types the binding surface
// is monomorphized over.
var numericTypes = []telem.DataType{
	telem.Uint8, telem.Uint16, telem.Uint32, telem.Uint64,
	telem.Int8, telem.Int16, telem.Int32, telem.Int64,
	telem.Float32, telem.Float64,
}

// typeSuffix names the exported-function suffix for dt, e.g. "u8" for
// telem.Uint8. It panics for types outside numericTypes.
func typeSuffix(dt telem.DataType) string {
	switch dt {
	case telem.Uint8:
		return "u8"
	case telem.Uint16:
		return "u16"
	case telem.Uint32:
		return "u32"
	case telem.Uint64:
		return "u64"
	case telem.Int8:
		return "i8"
	case telem.Int16:
		return "i16"
	case telem.Int32:
		return "i32"
	case telem.Int64:
		return "i64"
	case telem.Float32:
		return "f32"
	case telem.Float64:
		return "f64"
	default:
		panic(fmt.Sprintf("wasmhost: no export suffix for data type %q", dt))
	}
}

// Host is the per-runtime-instance binding surface: one Arena of transient
// handles, the shared State a node's calls route through, and the error
// handler WASM_PANIC and degraded-null-state conditions report to.
type Host struct {
	arena        *Arena
	state        *state.State
	errorHandler func(error)
	logger       *logging.Logger

	loggedNilState bool
}

// NewHost returns a Host bound to st. errorHandler may be nil, in which
// case panics and faults are swallowed after being logged.
func NewHost(st *state.State, errorHandler func(error), logger *logging.Logger) *Host {
	if logger == nil {
		logger = logging.Default()
	}
	return &Host{
		arena:        NewArena(),
		state:        st,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Reset reclaims every transient handle issued since the last tick. The
// runtime calls this once per tick, immediately before state.Flush.
func (h *Host) Reset() { h.arena.Reset() }

func (h *Host) reportError(err error) {
	if h.errorHandler != nil {
		h.errorHandler(err)
		return
	}
	h.logger.Errorf("wasmhost: %v", err)
}

// nullStateGuard reports whether the bound State is nil, logging the
// degradation exactly once. Callers use it to short-circuit into the
// "return default" failure path required for a null State.
func (h *Host) nullStateGuard() bool {
	if h.state != nil {
		return false
	}
	if !h.loggedNilState {
		h.logger.Warnf("wasmhost: channel/state call made with no State bound; degrading to defaults")
		h.loggedNilState = true
	}
	return true
}

// Instantiate builds the "arc" host module and instantiates it against rt,
// registering every binding family: allocation, indexing, arithmetic,
// comparison, unary ops, slicing, channel access, persistent state,
// strings, and the panic hook.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	b := rt.NewHostModuleBuilder("arc")
	h.registerAllocation(b)
	h.registerIndexing(b)
	h.registerArithmetic(b)
	h.registerComparison(b)
	h.registerUnary(b)
	h.registerSlice(b)
	h.registerChannelFns(b)
	h.registerPersistentFns(b)
	h.registerStringFns(b)
	h.registerPanicFn(b)
	return b.Instantiate(ctx)
}

// registerAllocation exports alloc_T(n) -> handle for each numeric type.
func (h *Host) registerAllocation(b wazero.HostModuleBuilder) {
	for _, dt := range numericTypes {
		dt := dt
		b.NewFunctionBuilder().
			WithFunc(func(ctx context.Context, n uint32) uint32 {
				s := telem.NewSeries(dt, int(n))
				for i := uint32(0); i < n; i++ {
					writeZero(s)
				}
				return h.arena.PutSeries(s)
			}).
			Export("alloc_" + typeSuffix(dt))
	}
}

// writeZero appends one zero-valued sample to s, matching s's data type.
func writeZero(s *telem.Series) {
	if isFloatType(s.DataType()) {
		s.WriteFloat(0)
	} else if isUnsignedType(s.DataType()) {
		s.WriteUint(0)
	} else {
		s.WriteInt(0)
	}
}

// registerIndexing exports len(h), index_T(h, i), and set_element_T(h, i, v)
// for each numeric type.
func (h *Host) registerIndexing(b wazero.HostModuleBuilder) {
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, handle uint32) uint32 {
			s, ok := h.arena.GetSeries(handle)
			if !ok {
				return 0
			}
			return uint32(s.Len())
		}).
		Export("len")

	for _, dt := range numericTypes {
		h.registerIndexPair(b, dt)
	}
}

// registerIndexPair exports index_T and set_element_T with Go signatures
// native to dt -- u8/u16/u32 widen to uint32, u64 stays uint64, i8/i16/i32
// widen to int32, i64 stays int64, and f32/f64 keep their own width -- so
// wazero's reflection-based WithFunc maps them to the matching WASM value
// type without any manual bit-punning.
func (h *Host) registerIndexPair(b wazero.HostModuleBuilder, dt telem.DataType) {
	suffix := typeSuffix(dt)
	get := func(handle, i uint32) (*telem.Series, bool) {
		s, ok := h.arena.GetSeries(handle)
		if !ok || int(i) >= s.Len() {
			return nil, false
		}
		return s, true
	}

	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) uint32 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return uint32(s.AsUint(int(i)))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i, v uint32) {
			if s, ok := get(handle, i); ok {
				s.SetUint(int(i), uint64(v))
			}
		}).Export("set_element_" + suffix)
	case telem.Uint64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) uint64 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return s.AsUint(int(i))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32, v uint64) {
			if s, ok := get(handle, i); ok {
				s.SetUint(int(i), v)
			}
		}).Export("set_element_" + suffix)
	case telem.Int8, telem.Int16, telem.Int32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) int32 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return int32(toInt64(s.At(int(i))))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32, v int32) {
			if s, ok := get(handle, i); ok {
				s.SetInt(int(i), int64(v))
			}
		}).Export("set_element_" + suffix)
	case telem.Int64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) int64 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return toInt64(s.At(int(i)))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32, v int64) {
			if s, ok := get(handle, i); ok {
				s.SetInt(int(i), v)
			}
		}).Export("set_element_" + suffix)
	case telem.Float32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) float32 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return float32(s.AsFloat(int(i)))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32, v float32) {
			if s, ok := get(handle, i); ok {
				s.SetFloat(int(i), float64(v))
			}
		}).Export("set_element_" + suffix)
	case telem.Float64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32) float64 {
			s, ok := get(handle, i)
			if !ok {
				return 0
			}
			return s.AsFloat(int(i))
		}).Export("index_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, handle, i uint32, v float64) {
			if s, ok := get(handle, i); ok {
				s.SetFloat(int(i), v)
			}
		}).Export("set_element_" + suffix)
	}
}
