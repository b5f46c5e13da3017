package wasmhost

import (
	"errors"
	"fmt"
	"math"

	"github.com/arclabs/arc-runtime/internal/telem"
)

// BinaryOp identifies one of the five elementwise arithmetic operations.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// CompareOp identifies one of the six elementwise comparison operations.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// ErrDivByZero signals "return handle 0, do not trap" at the binding
// layer: integer division/modulo by zero and float division/modulo by
// zero both resolve this way, per the numeric semantics section.
var ErrDivByZero = errors.New("wasmhost: division or modulo by zero")

// lengthMismatchf panics, which wazero converts into a trap of the calling
// WASM frame -- the documented behavior for series-series ops whose
// lengths disagree.
func lengthMismatchf(a, b int) {
	panic(fmt.Sprintf("wasmhost: length mismatch in series-series op: %d vs %d", a, b))
}

func isFloatType(dt telem.DataType) bool {
	return dt == telem.Float32 || dt == telem.Float64
}

func isUnsignedType(dt telem.DataType) bool {
	switch dt {
	case telem.Uint8, telem.Uint16, telem.Uint32, telem.Uint64:
		return true
	default:
		return false
	}
}

func isSignedType(dt telem.DataType) bool {
	switch dt {
	case telem.Int8, telem.Int16, telem.Int32, telem.Int64, telem.Timestamp:
		return true
	default:
		return false
	}
}

// binarySeriesSeries applies op elementwise across a and b, which must be
// the same length (panics/traps otherwise) and the same data type.
func binarySeriesSeries(op BinaryOp, a, b *telem.Series) (*telem.Series, error) {
	if a.Len() != b.Len() {
		lengthMismatchf(a.Len(), b.Len())
	}
	out := telem.NewSeries(a.DataType(), a.Len())
	for i := 0; i < a.Len(); i++ {
		if err := applyBinaryElement(out, a.DataType(), op, a.At(i), b.At(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// binarySeriesScalar applies op between every element of a and a scalar.
// reversed swaps operand order, needed for non-commutative ops (rsub,
// rdiv) where the scalar is the left-hand operand.
func binarySeriesScalar(op BinaryOp, a *telem.Series, scalar telem.SampleValue, reversed bool) (*telem.Series, error) {
	out := telem.NewSeries(a.DataType(), a.Len())
	for i := 0; i < a.Len(); i++ {
		x, y := a.At(i), scalar
		if reversed {
			x, y = scalar, a.At(i)
		}
		if err := applyBinaryElement(out, a.DataType(), op, x, y); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyBinaryElement(out *telem.Series, dt telem.DataType, op BinaryOp, x, y telem.SampleValue) error {
	switch {
	case isFloatType(dt):
		xf, yf := toFloat64(x), toFloat64(y)
		v, err := floatOp(op, xf, yf)
		if err != nil {
			return err
		}
		out.WriteFloat(v)
	case isUnsignedType(dt):
		xu, yu := toUint64(x), toUint64(y)
		v, err := uintOp(op, xu, yu)
		if err != nil {
			return err
		}
		out.WriteUint(v)
	case isSignedType(dt):
		xi, yi := toInt64(x), toInt64(y)
		v, err := intOp(op, xi, yi)
		if err != nil {
			return err
		}
		out.WriteInt(v)
	default:
		return fmt.Errorf("wasmhost: arithmetic unsupported for data type %q", dt)
	}
	return nil
}

func floatOp(op BinaryOp, x, y float64) (float64, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return x / y, nil
	case OpMod:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return math.Mod(x, y), nil
	default:
		return 0, fmt.Errorf("wasmhost: unknown binary op %d", op)
	}
}

func uintOp(op BinaryOp, x, y uint64) (uint64, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return x / y, nil
	case OpMod:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return x % y, nil
	default:
		return 0, fmt.Errorf("wasmhost: unknown binary op %d", op)
	}
}

func intOp(op BinaryOp, x, y int64) (int64, error) {
	switch op {
	case OpAdd:
		return x + y, nil
	case OpSub:
		return x - y, nil
	case OpMul:
		return x * y, nil
	case OpDiv:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return x / y, nil
	case OpMod:
		if y == 0 {
			return 0, ErrDivByZero
		}
		return x % y, nil
	default:
		return 0, fmt.Errorf("wasmhost: unknown binary op %d", op)
	}
}

// comparisonSeriesSeries applies op elementwise across a and b (same
// length required) and returns a u8 series of 0/1 results.
func comparisonSeriesSeries(op CompareOp, a, b *telem.Series) *telem.Series {
	if a.Len() != b.Len() {
		lengthMismatchf(a.Len(), b.Len())
	}
	out := telem.NewSeries(telem.Uint8, a.Len())
	for i := 0; i < a.Len(); i++ {
		out.WriteUint(boolToU64(applyCompareElement(a.DataType(), op, a.At(i), b.At(i))))
	}
	return out
}

// comparisonSeriesScalar applies op between every element of a and a
// scalar, returning a u8 series of 0/1 results.
func comparisonSeriesScalar(op CompareOp, a *telem.Series, scalar telem.SampleValue) *telem.Series {
	out := telem.NewSeries(telem.Uint8, a.Len())
	for i := 0; i < a.Len(); i++ {
		out.WriteUint(boolToU64(applyCompareElement(a.DataType(), op, a.At(i), scalar)))
	}
	return out
}

func applyCompareElement(dt telem.DataType, op CompareOp, x, y telem.SampleValue) bool {
	switch {
	case isFloatType(dt):
		return compareOrdered(op, toFloat64(x), toFloat64(y))
	case isUnsignedType(dt):
		return compareOrdered(op, toUint64(x), toUint64(y))
	case isSignedType(dt):
		return compareOrdered(op, toInt64(x), toInt64(y))
	case dt == telem.String || dt == telem.JSON:
		xs, _ := x.(string)
		ys, _ := y.(string)
		return compareOrdered(op, xs, ys)
	default:
		return false
	}
}

type ordered interface {
	~int64 | ~uint64 | ~float64 | ~string
}

func compareOrdered[T ordered](op CompareOp, x, y T) bool {
	switch op {
	case OpEq:
		return x == y
	case OpNe:
		return x != y
	case OpLt:
		return x < y
	case OpLe:
		return x <= y
	case OpGt:
		return x > y
	case OpGe:
		return x >= y
	default:
		return false
	}
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// negate returns the elementwise unary negation of a, which must hold a
// signed integer or floating-point type; unary negate on unsigned types is
// undefined and is never offered at the binding layer.
func negate(a *telem.Series) *telem.Series {
	out := telem.NewSeries(a.DataType(), a.Len())
	for i := 0; i < a.Len(); i++ {
		if isFloatType(a.DataType()) {
			out.WriteFloat(-toFloat64(a.At(i)))
		} else {
			out.WriteInt(-toInt64(a.At(i)))
		}
	}
	return out
}

// logicalNot implements boolean NOT over a u8 series: 0 maps to 1, any
// non-zero value maps to 0. Applying it twice normalizes truthy values
// to 1.
func logicalNot(a *telem.Series) *telem.Series {
	out := telem.NewSeries(telem.Uint8, a.Len())
	for i := 0; i < a.Len(); i++ {
		v := a.At(i).(uint8)
		if v == 0 {
			out.WriteUint(1)
		} else {
			out.WriteUint(0)
		}
	}
	return out
}

func toFloat64(v telem.SampleValue) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toUint64(v telem.SampleValue) uint64 {
	switch n := v.(type) {
	case uint8:
		return uint64(n)
	case uint16:
		return uint64(n)
	case uint32:
		return uint64(n)
	case uint64:
		return n
	case float64:
		return uint64(n)
	default:
		return 0
	}
}

func toInt64(v telem.SampleValue) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}
