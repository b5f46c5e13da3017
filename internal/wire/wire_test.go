package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/telem"
)

func TestEncodeDecodeRoundTripsFixedWidthSeries(t *testing.T) {
	f := telem.NewFrame()

	u := telem.NewSeries(telem.Uint32, 3)
	u.WriteUint(1)
	u.WriteUint(2)
	u.WriteUint(3)
	f.Append(telem.ChannelKey(7), u)

	fl := telem.NewSeries(telem.Float64, 2)
	fl.WriteFloat(1.5)
	fl.WriteFloat(-2.25)
	f.Append(telem.ChannelKey(9), fl)

	encoded, err := Encode(f)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, f.Len(), decoded.Len())

	du, ok := decoded.Get(telem.ChannelKey(7))
	require.True(t, ok)
	require.Equal(t, telem.Uint32, du.DataType())
	require.Equal(t, 3, du.Len())
	require.Equal(t, uint32(1), du.At(0))
	require.Equal(t, uint32(3), du.At(2))

	df, ok := decoded.Get(telem.ChannelKey(9))
	require.True(t, ok)
	require.Equal(t, 2, df.Len())
	require.Equal(t, -2.25, df.At(1))
}

func TestEncodeDecodeRoundTripsVariableWidthSeries(t *testing.T) {
	f := telem.NewFrame()
	s := telem.NewSeries(telem.String, 64)
	s.WriteString("alpha")
	s.WriteString("beta")
	f.Append(telem.ChannelKey(1), s)

	encoded, err := Encode(f)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)

	ds, ok := decoded.Get(telem.ChannelKey(1))
	require.True(t, ok)
	require.Equal(t, []string{"alpha", "beta"}, ds.Strings())
}

func TestEncodeEmptyFrameRoundTrips(t *testing.T) {
	f := telem.NewFrame()
	encoded, err := Encode(f)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, 0, decoded.Len())
}

func TestDecodeTruncatedDataErrors(t *testing.T) {
	f := telem.NewFrame()
	u := telem.NewSeries(telem.Uint8, 1)
	u.WriteUint(42)
	f.Append(telem.ChannelKey(1), u)

	encoded, err := Encode(f)
	require.NoError(t, err)

	_, err = Decode(encoded[:len(encoded)-1])
	require.Error(t, err)
}

func TestEncodeDecodeRoundTripsDuplicateChannelKeys(t *testing.T) {
	f := telem.NewFrame()
	a := telem.NewSeries(telem.Uint8, 1)
	a.WriteUint(1)
	b := telem.NewSeries(telem.Uint8, 1)
	b.WriteUint(2)
	f.Append(telem.ChannelKey(3), a)
	f.Append(telem.ChannelKey(3), b)

	encoded, err := Encode(f)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Len())

	du, ok := decoded.Get(telem.ChannelKey(3))
	require.True(t, ok)
	require.Equal(t, uint8(1), du.At(0))
}
