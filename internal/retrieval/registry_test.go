package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/telem"
)

func TestRetrieveReturnsRegisteredDigestsInOrder(t *testing.T) {
	r := NewMockRegistry()
	r.Register(telem.ChannelKey(1), telem.Float32)
	r.Register(telem.ChannelKey(2), telem.Uint8)

	digests, err := r.Retrieve([]telem.ChannelKey{2, 1})
	require.NoError(t, err)
	require.Equal(t, telem.Uint8, digests[0].DataType)
	require.Equal(t, telem.Float32, digests[1].DataType)
	require.Equal(t, 2, r.Len())
}

func TestRetrieveUnregisteredKeyErrors(t *testing.T) {
	r := NewMockRegistry()
	_, err := r.Retrieve([]telem.ChannelKey{99})
	require.Error(t, err)
}

func TestRegisterOverwritesPriorDigest(t *testing.T) {
	r := NewMockRegistry()
	r.Register(telem.ChannelKey(5), telem.Int32)
	r.Register(telem.ChannelKey(5), telem.Float64)

	digests, err := r.Retrieve([]telem.ChannelKey{5})
	require.NoError(t, err)
	require.Equal(t, telem.Float64, digests[0].DataType)
	require.Equal(t, 1, r.Len())
}
