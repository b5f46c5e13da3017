package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// binarySpec describes one exported arithmetic family: its operation, its
// exported name fragment, and whether it needs a reversed ("r"-prefixed)
// scalar variant for non-commutative operands.
type binarySpec struct {
	op         BinaryOp
	name       string
	reversible bool
}

var binarySpecs = []binarySpec{
	{OpAdd, "add", false},
	{OpSub, "sub", true},
	{OpMul, "mul", false},
	{OpDiv, "div", true},
	{OpMod, "mod", false},
}

type compareSpec struct {
	op   CompareOp
	name string
}

var compareSpecs = []compareSpec{
	{OpEq, "eq"},
	{OpNe, "ne"},
	{OpLt, "lt"},
	{OpLe, "le"},
	{OpGt, "gt"},
	{OpGe, "ge"},
}

// registerArithmetic exports, for every numeric type and every binarySpec,
// a series-series form (`<name>_<suffix>`) and a series-scalar form
// (`<name>_scalar_<suffix>`), plus a reversed series-scalar form
// (`r<name>_scalar_<suffix>`) for sub and div.
func (h *Host) registerArithmetic(b wazero.HostModuleBuilder) {
	for _, dt := range numericTypes {
		for _, spec := range binarySpecs {
			h.registerBinarySeriesSeries(b, dt, spec)
			h.registerBinarySeriesScalar(b, dt, spec, false)
			if spec.reversible {
				h.registerBinarySeriesScalar(b, dt, spec, true)
			}
		}
	}
}

func (h *Host) seriesSeriesArith(op BinaryOp, aH, bH uint32) uint32 {
	a, ok1 := h.arena.GetSeries(aH)
	b, ok2 := h.arena.GetSeries(bH)
	if !ok1 || !ok2 {
		return 0
	}
	out, err := binarySeriesSeries(op, a, b)
	if err != nil {
		return 0
	}
	return h.arena.PutSeries(out)
}

func (h *Host) seriesScalarArith(op BinaryOp, aH uint32, scalar telem.SampleValue, reversed bool) uint32 {
	a, ok := h.arena.GetSeries(aH)
	if !ok {
		return 0
	}
	out, err := binarySeriesScalar(op, a, scalar, reversed)
	if err != nil {
		return 0
	}
	return h.arena.PutSeries(out)
}

func (h *Host) registerBinarySeriesSeries(b wazero.HostModuleBuilder, dt telem.DataType, spec binarySpec) {
	suffix := typeSuffix(dt)
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH, bH uint32) uint32 {
			return h.seriesSeriesArith(spec.op, aH, bH)
		}).
		Export(spec.name + "_" + suffix)
}

// registerBinarySeriesScalar exports the series-scalar form of spec for dt.
// The scalar parameter's Go type matches dt's native WASM width, mirroring
// registerIndexPair, so wazero's reflection-based WithFunc can bind it
// without manual encoding.
func (h *Host) registerBinarySeriesScalar(b wazero.HostModuleBuilder, dt telem.DataType, spec binarySpec, reversed bool) {
	suffix := typeSuffix(dt)
	name := spec.name + "_scalar_" + suffix
	if reversed {
		name = "r" + name
	}

	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar uint32) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	case telem.Uint64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar uint64) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	case telem.Int8, telem.Int16, telem.Int32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar int32) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	case telem.Int64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar int64) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	case telem.Float32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar float32) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	case telem.Float64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar float64) uint32 {
			return h.seriesScalarArith(spec.op, aH, scalar, reversed)
		}).Export(name)
	}
}

// registerComparison exports, for every numeric type and every
// compareSpec, a series-series form and a series-scalar form, both
// returning a handle to a u8 series of 0/1 results.
func (h *Host) registerComparison(b wazero.HostModuleBuilder) {
	for _, dt := range numericTypes {
		for _, spec := range compareSpecs {
			h.registerCompareSeriesSeries(b, dt, spec)
			h.registerCompareSeriesScalar(b, dt, spec)
		}
	}
}

func (h *Host) registerCompareSeriesSeries(b wazero.HostModuleBuilder, dt telem.DataType, spec compareSpec) {
	suffix := typeSuffix(dt)
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH, bH uint32) uint32 {
			a, ok1 := h.arena.GetSeries(aH)
			bs, ok2 := h.arena.GetSeries(bH)
			if !ok1 || !ok2 {
				return 0
			}
			return h.arena.PutSeries(comparisonSeriesSeries(spec.op, a, bs))
		}).
		Export(spec.name + "_" + suffix)
}

func (h *Host) registerCompareSeriesScalar(b wazero.HostModuleBuilder, dt telem.DataType, spec compareSpec) {
	suffix := typeSuffix(dt)
	name := spec.name + "_scalar_" + suffix

	compare := func(aH uint32, scalar telem.SampleValue) uint32 {
		a, ok := h.arena.GetSeries(aH)
		if !ok {
			return 0
		}
		return h.arena.PutSeries(comparisonSeriesScalar(spec.op, a, scalar))
	}

	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar uint32) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	case telem.Uint64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar uint64) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	case telem.Int8, telem.Int16, telem.Int32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar int32) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	case telem.Int64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar int64) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	case telem.Float32:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar float32) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	case telem.Float64:
		b.NewFunctionBuilder().WithFunc(func(ctx context.Context, aH uint32, scalar float64) uint32 {
			return compare(aH, scalar)
		}).Export(name)
	}
}

// signedAndFloatTypes is the subset of numericTypes unary negate accepts;
// unsigned negation is undefined and is deliberately never exported.
var signedAndFloatTypes = []telem.DataType{
	telem.Int8, telem.Int16, telem.Int32, telem.Int64,
	telem.Float32, telem.Float64,
}

// registerUnary exports negate_T for signed/float types and not_u8.
func (h *Host) registerUnary(b wazero.HostModuleBuilder) {
	for _, dt := range signedAndFloatTypes {
		dt := dt
		b.NewFunctionBuilder().
			WithFunc(func(ctx context.Context, aH uint32) uint32 {
				a, ok := h.arena.GetSeries(aH)
				if !ok {
					return 0
				}
				return h.arena.PutSeries(negate(a))
			}).
			Export("negate_" + typeSuffix(dt))
	}

	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH uint32) uint32 {
			a, ok := h.arena.GetSeries(aH)
			if !ok {
				return 0
			}
			return h.arena.PutSeries(logicalNot(a))
		}).
		Export("not_u8")
}

// registerSlice exports slice(h, start, end) -> handle with half-open
// bounds [start, end). It is a single generic export: the arena already
// records each handle's element type, so no per-type variant is needed.
func (h *Host) registerSlice(b wazero.HostModuleBuilder) {
	b.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, aH, start, end uint32) uint32 {
			a, ok := h.arena.GetSeries(aH)
			if !ok {
				return 0
			}
			if start > end || int(end) > a.Len() {
				return 0
			}
			out := telem.NewSeries(a.DataType(), int(end-start))
			for i := start; i < end; i++ {
				writeElementCopy(out, a, int(i))
			}
			return h.arena.PutSeries(out)
		}).
		Export("slice")
}

// writeElementCopy appends the element at src[i] onto dst, which must share
// src's data type.
func writeElementCopy(dst, src *telem.Series, i int) {
	switch {
	case isFloatType(dst.DataType()):
		dst.WriteFloat(src.AsFloat(i))
	case isUnsignedType(dst.DataType()):
		dst.WriteUint(src.AsUint(i))
	case isSignedType(dst.DataType()):
		dst.WriteInt(toInt64(src.At(i)))
	case dst.DataType() == telem.String || dst.DataType() == telem.JSON:
		dst.WriteString(src.At(i).(string))
	}
}
