package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// narrowUint/narrowInt truncate a widened WASM scalar down to the concrete
// Go type the series/persistent layers expect for dt, mirroring the
// truncation Series.WriteUint/WriteInt already perform on the wire.
func narrowUint(dt telem.DataType, v uint64) telem.SampleValue {
	switch dt {
	case telem.Uint8:
		return uint8(v)
	case telem.Uint16:
		return uint16(v)
	case telem.Uint32:
		return uint32(v)
	default:
		return v
	}
}

func narrowInt(dt telem.DataType, v int64) telem.SampleValue {
	switch dt {
	case telem.Int8:
		return int8(v)
	case telem.Int16:
		return int16(v)
	case telem.Int32:
		return int32(v)
	default:
		return v
	}
}

// registerPersistentFns exports state_load_T/state_store_T,
// state_load_series_T/state_store_series_T, and state_load_str/
// state_store_str, all scoped to State.CurrentNodeKey via
// state.PersistentAccessor.
func (h *Host) registerPersistentFns(b wazero.HostModuleBuilder) {
	for _, dt := range numericTypes {
		h.registerPersistentScalarPair(b, dt)
		h.registerPersistentSeriesPair(b, dt)
	}

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, slot, initHandle uint32) uint32 {
			if h.nullStateGuard() {
				return initHandle
			}
			init, ok := h.arena.GetString(initHandle)
			if !ok {
				init = ""
			}
			got := h.state.Persistent().LoadString(slot, init)
			return h.arena.PutString(got)
		}).
		Export("state_load_str")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, slot, strHandle uint32) {
			if h.nullStateGuard() {
				return
			}
			s, ok := h.arena.GetString(strHandle)
			if !ok {
				return
			}
			h.state.Persistent().StoreString(slot, s)
		}).
		Export("state_store_str")
}

func (h *Host) registerPersistentScalarPair(b wazero.HostModuleBuilder, dt telem.DataType) {
	suffix := typeSuffix(dt)

	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot, init uint32) uint32 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, narrowUint(dt, uint64(init)))
			return uint32(toUint64(got))
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot, v uint32) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, narrowUint(dt, uint64(v)))
		}).Export("state_store_" + suffix)
	case telem.Uint64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, init uint64) uint64 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, init)
			return toUint64(got)
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, v uint64) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, v)
		}).Export("state_store_" + suffix)
	case telem.Int8, telem.Int16, telem.Int32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, init int32) int32 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, narrowInt(dt, int64(init)))
			return int32(toInt64(got))
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, v int32) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, narrowInt(dt, int64(v)))
		}).Export("state_store_" + suffix)
	case telem.Int64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, init int64) int64 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, init)
			return toInt64(got)
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, v int64) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, v)
		}).Export("state_store_" + suffix)
	case telem.Float32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, init float32) float32 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, init)
			return float32(toFloat64(got))
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, v float32) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, v)
		}).Export("state_store_" + suffix)
	case telem.Float64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, init float64) float64 {
			if h.nullStateGuard() {
				return init
			}
			got := h.state.Persistent().LoadPrimitive(slot, init)
			return toFloat64(got)
		}).Export("state_load_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, slot uint32, v float64) {
			if h.nullStateGuard() {
				return
			}
			h.state.Persistent().StorePrimitive(slot, v)
		}).Export("state_store_" + suffix)
	}
}

// registerPersistentSeriesPair exports state_load_series_T and
// state_store_series_T. The flush boundary between the transient arena and
// the persistent store is handled entirely inside state.PersistentAccessor,
// which deep-copies on both load and store.
func (h *Host) registerPersistentSeriesPair(b wazero.HostModuleBuilder, dt telem.DataType) {
	suffix := typeSuffix(dt)

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, slot, initHandle uint32) uint32 {
			if h.nullStateGuard() {
				return initHandle
			}
			init, ok := h.arena.GetSeries(initHandle)
			if !ok {
				init = telem.NewSeries(dt, 0)
			}
			got := h.state.Persistent().LoadSeries(slot, init)
			return h.arena.PutSeries(got)
		}).
		Export("state_load_series_" + suffix)

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, slot, seriesHandle uint32) {
			if h.nullStateGuard() {
				return
			}
			s, ok := h.arena.GetSeries(seriesHandle)
			if !ok {
				return
			}
			h.state.Persistent().StoreSeries(slot, s)
		}).
		Export("state_store_series_" + suffix)
}
