// Package integration runs the cross-package, whole-Runtime scenarios
// named in the core's testable-properties list, as opposed to the
// package-local unit tests living beside each package.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	arc "github.com/arclabs/arc-runtime"
	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/loop"
	"github.com/arclabs/arc-runtime/internal/retrieval"
	"github.com/arclabs/arc-runtime/internal/telem"
)

const demoChannel = telem.ChannelKey(1)

func newRuntime(t *testing.T) *arc.Runtime {
	t.Helper()
	reg := retrieval.NewMockRegistry()
	reg.Register(demoChannel, telem.Float32)

	cfg := arc.DefaultConfig()
	cfg.Loop.Mode = loop.BusyWait

	rt, err := arc.New(
		context.Background(),
		cfg,
		arc.GraphSpec{},
		[]telem.ChannelKey{demoChannel},
		reg.Retrieve,
		nil,
		nil,
	)
	require.NoError(t, err)
	return rt
}

func frame(v float32) *telem.Frame {
	f := telem.NewFrame()
	s := telem.NewSeries(telem.Float32, 1)
	s.WriteFloat(float64(v))
	f.Append(demoChannel, s)
	return f
}

// S2 — lifecycle: start -> true; start -> false; write -> ok; stop -> true;
// write -> RUNTIME_CLOSED; stop -> false; start -> true; write -> ok; stop -> true.
func TestLifecycleScenarioS2(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	require.False(t, rt.Start())

	require.NoError(t, rt.Write(frame(1.0)))

	require.True(t, rt.Stop())

	err := rt.Write(frame(2.0))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.RuntimeClosed))

	require.False(t, rt.Stop())

	require.True(t, rt.Start())
	require.NoError(t, rt.Write(frame(3.0)))
	require.True(t, rt.Stop())
}

// Property 2 — lifecycle idempotency: extra start/stop calls are no-ops,
// and StartCount/StopCount (the Runtime's equivalent of the loop's
// observed start_count/stop_count) equal 1 after one real transition each.
func TestLifecycleIdempotencyCounts(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close(context.Background())

	rt.Start()
	rt.Start()
	rt.Start()
	rt.Stop()
	rt.Stop()

	require.EqualValues(t, 1, rt.StartCount())
	require.EqualValues(t, 1, rt.StopCount())
}

// Property 3 — restartability: after a full start/stop/start cycle, write
// succeeds again.
func TestRestartabilityScenario(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	require.True(t, rt.Stop())
	require.True(t, rt.Start())
	defer rt.Stop()

	require.NoError(t, rt.Write(frame(4.0)))
}

// A frame written to a running Runtime is accepted and the tick thread goes
// on ticking, without any node in the graph. State is not reachable from
// outside package arc, so whether the frame's data became readable is not
// checked here.
func TestWrittenFrameIsAcceptedWhileTicking(t *testing.T) {
	rt := newRuntime(t)
	defer rt.Close(context.Background())

	require.True(t, rt.Start())
	defer rt.Stop()

	require.NoError(t, rt.Write(frame(9.5)))

	require.Eventually(t, func() bool {
		return rt.MetricsSnapshot().TickCount > 0
	}, 2*time.Second, 10*time.Millisecond)
}
