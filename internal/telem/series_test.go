package telem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteAndAtRoundTripPerType(t *testing.T) {
	u := NewSeries(Uint16, 2)
	u.WriteUint(10)
	u.WriteUint(20)
	require.Equal(t, uint16(10), u.At(0))
	require.Equal(t, uint16(20), u.At(1))

	i := NewSeries(Int64, 1)
	i.WriteInt(-42)
	require.Equal(t, int64(-42), i.At(0))

	f := NewSeries(Float32, 1)
	f.WriteFloat(3.25)
	require.Equal(t, float32(3.25), f.At(0))
}

func TestNegativeIndexResolvesFromEnd(t *testing.T) {
	s := NewSeries(Int32, 3)
	s.WriteInt(1)
	s.WriteInt(2)
	s.WriteInt(3)
	require.Equal(t, int32(3), s.At(-1))
	require.Equal(t, int32(1), s.At(-3))
}

func TestOutOfBoundsIndexPanics(t *testing.T) {
	s := NewSeries(Int32, 1)
	s.WriteInt(1)
	require.Panics(t, func() { s.At(1) })
	require.Panics(t, func() { s.At(-2) })
}

func TestStringSeriesNewlineTerminated(t *testing.T) {
	s := NewSeries(String, 64)
	require.True(t, s.WriteString("alpha"))
	require.True(t, s.WriteString("beta"))
	require.Equal(t, []string{"alpha", "beta"}, s.Strings())
	require.Equal(t, "alpha", s.At(0))
	require.Equal(t, "beta", s.At(1))
}

func TestWriteStringFailsOnceCapacityExhausted(t *testing.T) {
	s := NewSeries(String, 4)
	require.False(t, s.WriteString("toolong"))
}

func TestDeepCopyDoesNotAliasBackingBuffer(t *testing.T) {
	s := NewSeries(Uint8, 2)
	s.WriteUint(1)
	cp := s.DeepCopy()
	cp.SetUint(0, 99)
	require.Equal(t, uint8(1), s.At(0))
	require.Equal(t, uint8(99), cp.At(0))
}

func TestSetUintSetIntSetFloatOverwriteInPlace(t *testing.T) {
	s := NewSeries(Uint32, 2)
	s.WriteUint(1)
	s.WriteUint(2)
	s.SetUint(1, 99)
	require.Equal(t, uint32(99), s.At(1))

	i := NewSeries(Int16, 1)
	i.WriteInt(5)
	i.SetInt(0, -5)
	require.Equal(t, int16(-5), i.At(0))

	f := NewSeries(Float64, 1)
	f.WriteFloat(1.0)
	f.SetFloat(0, 2.5)
	require.Equal(t, 2.5, f.At(0))
}

func TestAsUintAndAsFloatCoerceAcrossConcreteTypes(t *testing.T) {
	f := NewSeries(Float32, 1)
	f.WriteFloat(4.0)
	require.Equal(t, uint64(4), f.AsUint(0))

	u := NewSeries(Uint8, 1)
	u.WriteUint(7)
	require.Equal(t, float64(7), u.AsFloat(0))
}

func TestDataTypeDensityAndValid(t *testing.T) {
	require.Equal(t, 4, Uint32.Density())
	require.True(t, Uint32.Valid())
	require.True(t, String.IsVariable())
	require.False(t, Uint32.IsVariable())
	require.False(t, Unknown.Valid())
}
