package telem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameAppendAndGet(t *testing.T) {
	f := NewFrame()
	s := NewSeries(Float32, 1)
	s.WriteFloat(1.0)
	f.Append(ChannelKey(5), s)

	got, ok := f.Get(ChannelKey(5))
	require.True(t, ok)
	require.Equal(t, s, got)

	_, ok = f.Get(ChannelKey(6))
	require.False(t, ok)
	require.Equal(t, 1, f.Len())
}

func TestFrameValidateAcceptsDuplicateKeys(t *testing.T) {
	f := NewFrame()
	s := NewSeries(Uint8, 1)
	s.WriteUint(1)
	f.Append(ChannelKey(1), s)
	f.Append(ChannelKey(1), s)

	require.NoError(t, f.Validate())
	require.Equal(t, 2, f.Len())
}

func TestFrameDeepCopyIsIndependent(t *testing.T) {
	f := NewFrame()
	s := NewSeries(Uint8, 1)
	s.WriteUint(1)
	f.Append(ChannelKey(1), s)

	cp := f.DeepCopy()
	cp.Series[0].SetUint(0, 42)
	require.Equal(t, uint8(1), s.At(0))
	require.Equal(t, uint8(42), cp.Series[0].At(0))
}

func TestMultiSeriesFlushKeepsOnlyLatest(t *testing.T) {
	ms := NewMultiSeries(Float32)
	for _, v := range []float64{1, 2, 3} {
		s := NewSeries(Float32, 1)
		s.WriteFloat(v)
		ms.Push(s)
	}
	require.Equal(t, 3, ms.Len())
	ms.Flush()
	require.Equal(t, 1, ms.Len())
	require.Equal(t, float32(3), ms.Latest().At(0))
}

func TestMultiSeriesPushAcceptsTypeMismatch(t *testing.T) {
	ms := NewMultiSeries(Float32)
	bad := NewSeries(Int32, 1)
	bad.WriteInt(1)
	require.NotPanics(t, func() { ms.Push(bad) })
	require.Equal(t, 1, ms.Len())
	require.Equal(t, Int32, ms.Latest().DataType())
}
