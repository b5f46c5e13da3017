package arc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/loop"
	"github.com/arclabs/arc-runtime/internal/retrieval"
	"github.com/arclabs/arc-runtime/internal/telem"
)

// newTestRuntime builds a Runtime over an empty graph (no nodes, no edges),
// exercising the lifecycle surface without needing a compiled WASM body.
func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	reg := retrieval.NewMockRegistry()
	reg.Register(telem.ChannelKey(1), telem.Float64)

	cfg := DefaultConfig()
	cfg.Loop.Mode = loop.BusyWait // avoids sleeping between ticks in tests

	rt, err := New(
		context.Background(),
		cfg,
		GraphSpec{},
		[]telem.ChannelKey{1},
		reg.Retrieve,
		nil,
		nil,
	)
	require.NoError(t, err)
	return rt
}

func TestStartStopIsIdempotent(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	require.False(t, rt.Start())
	require.EqualValues(t, 1, rt.StartCount())

	require.True(t, rt.Stop())
	require.False(t, rt.Stop())
	require.EqualValues(t, 1, rt.StopCount())
}

func TestRuntimeRestartsAfterStop(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	require.True(t, rt.Stop())

	require.True(t, rt.Start())
	require.EqualValues(t, 2, rt.StartCount())
	require.True(t, rt.Stop())
}

func TestWriteFailsWhenNotRunning(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	err := rt.Write(telem.NewFrame())
	require.Error(t, err)
}

func TestWriteIsIngestedIntoStateByTheTickThread(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	defer rt.Stop()

	f := telem.NewFrame()
	s := telem.NewSeries(telem.Float64, 1)
	s.WriteFloat(3.25)
	f.Append(telem.ChannelKey(1), s)

	require.NoError(t, rt.Write(f))

	require.Eventually(t, func() bool {
		_, err := rt.state.ReadChannel(telem.ChannelKey(1))
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseOutputsUnblocksRead(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	defer rt.Stop()

	rt.CloseOutputs()

	var out *telem.Frame
	ok := rt.Read(&out)
	require.False(t, ok)
}

func TestMetricsReflectTickActivity(t *testing.T) {
	rt := newTestRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())

	require.Eventually(t, func() bool {
		return rt.MetricsSnapshot().TickCount > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.True(t, rt.Stop())
}
