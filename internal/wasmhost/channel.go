package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// latestChannelValue returns the most recent sample written to key, or nil
// if the channel is unregistered, empty, or no State is bound.
func (h *Host) latestChannelValue(key uint32) telem.SampleValue {
	if h.nullStateGuard() {
		return nil
	}
	ms, err := h.state.ReadChannel(telem.ChannelKey(key))
	if err != nil {
		return nil
	}
	latest := ms.Latest()
	if latest == nil || latest.Empty() {
		return nil
	}
	return latest.At(-1)
}

// enqueueChannelWrite stages a single-sample series of type dt onto key for
// the post-tick flush.
func (h *Host) enqueueChannelWrite(key uint32, dt telem.DataType, v telem.SampleValue) {
	if h.nullStateGuard() {
		return
	}
	s := telem.NewSeries(dt, 1)
	switch {
	case isFloatType(dt):
		s.WriteFloat(toFloat64(v))
	case isUnsignedType(dt):
		s.WriteUint(toUint64(v))
	case isSignedType(dt):
		s.WriteInt(toInt64(v))
	case dt.IsVariable():
		str, _ := v.(string)
		s.WriteString(str)
	}
	h.state.EnqueueWrite(telem.ChannelKey(key), s)
}

// registerChannelFns exports channel_read_T/channel_write_T for every
// numeric type, plus channel_read_str/channel_write_str.
func (h *Host) registerChannelFns(b wazero.HostModuleBuilder) {
	for _, dt := range numericTypes {
		h.registerChannelPair(b, dt)
	}

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, key uint32) uint32 {
			v := h.latestChannelValue(key)
			s, ok := v.(string)
			if !ok {
				return 0
			}
			return h.arena.PutString(s)
		}).
		Export("channel_read_str")

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, key, strHandle uint32) {
			s, ok := h.arena.GetString(strHandle)
			if !ok {
				return
			}
			h.enqueueChannelWrite(key, telem.String, s)
		}).
		Export("channel_write_str")
}

// registerChannelPair exports channel_read_T and channel_write_T with Go
// signatures native to dt, casting whatever the channel's registered type
// actually holds to T (read side) or from T to the channel's write series
// (write side), via toFloat64/toUint64/toInt64.
func (h *Host) registerChannelPair(b wazero.HostModuleBuilder, dt telem.DataType) {
	suffix := typeSuffix(dt)

	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) uint32 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return uint32(toUint64(v))
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key, v uint32) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	case telem.Uint64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) uint64 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return toUint64(v)
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32, v uint64) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	case telem.Int8, telem.Int16, telem.Int32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) int32 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return int32(toInt64(v))
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32, v int32) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	case telem.Int64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) int64 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return toInt64(v)
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32, v int64) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	case telem.Float32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) float32 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return float32(toFloat64(v))
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32, v float32) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	case telem.Float64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32) float64 {
			v := h.latestChannelValue(key)
			if v == nil {
				return 0
			}
			return toFloat64(v)
		}).Export("channel_read_" + suffix)
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, key uint32, v float64) {
			h.enqueueChannelWrite(key, dt, v)
		}).Export("channel_write_" + suffix)
	}
}
