package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/telem"
)

func twoFloat32Node(key string) NodeMetadata {
	return NodeMetadata{
		Key:     key,
		Outputs: []ParamSpec{{Name: "out", DataType: telem.Float32}},
	}
}

func TestReadChannelUnregistered(t *testing.T) {
	s := New()
	_, err := s.ReadChannel(1)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.ChannelNotFound))
}

func TestReadChannelEmpty(t *testing.T) {
	s := New()
	s.RegisterChannel(1, telem.Float32)
	_, err := s.ReadChannel(1)
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.NoData))
}

func TestFlushPreservesLatestSeries(t *testing.T) {
	s := New()
	s.RegisterChannel(1, telem.Float32)

	a := telem.NewSeries(telem.Float32, 1)
	a.WriteFloat(1.0)
	b := telem.NewSeries(telem.Float32, 1)
	b.WriteFloat(2.0)

	f := telem.NewFrame()
	f.Append(1, a)
	s.Ingest(f)
	f2 := telem.NewFrame()
	f2.Append(1, b)
	s.Ingest(f2)

	s.Flush()

	ms, err := s.ReadChannel(1)
	require.NoError(t, err)
	require.Equal(t, 1, ms.Len())
	require.InDelta(t, 2.0, ms.Latest().At(0), 1e-9)
}

func TestRefreshInputsWatermarkTriggering(t *testing.T) {
	s := New()
	s.RegisterNode(twoFloat32Node("producer"))
	s.RegisterNode(NodeMetadata{
		Key:    "consumer",
		Inputs: []ParamSpec{{Name: "in", DataType: telem.Float32}},
	})
	s.AddEdge(Edge{
		Source: Handle{NodeKey: "producer", Param: "out"},
		Target: Handle{NodeKey: "consumer", Param: "in"},
	})

	require.False(t, s.RefreshInputs("consumer"), "no producer output yet")

	out := telem.NewSeries(telem.Float32, 1)
	out.WriteFloat(42.0)
	s.SetOutput("producer", "out", out, telem.NewSeries(telem.Timestamp, 0))

	require.True(t, s.RefreshInputs("consumer"), "first producer output should trigger")
	require.False(t, s.RefreshInputs("consumer"), "no change since last refresh")

	out2 := telem.NewSeries(telem.Float32, 1)
	out2.WriteFloat(43.0)
	s.SetOutput("producer", "out", out2, telem.NewSeries(telem.Timestamp, 0))
	require.True(t, s.RefreshInputs("consumer"), "new producer output should trigger again")

	view, ok := s.Input("consumer", "in")
	require.True(t, ok)
	require.InDelta(t, 43.0, view.Series.At(0), 1e-9)
}

func TestRefreshInputsUnconnectedDefault(t *testing.T) {
	s := New()
	s.RegisterNode(NodeMetadata{
		Key: "n",
		Inputs: []ParamSpec{
			{Name: "in", DataType: telem.Float32, HasDefault: true, Default: float64(7.0)},
		},
	})

	require.True(t, s.RefreshInputs("n"), "default should trigger once")
	require.False(t, s.RefreshInputs("n"), "default should not re-trigger")
}

func TestRefreshInputsTwoProducerAND(t *testing.T) {
	s := New()
	s.RegisterNode(twoFloat32Node("p1"))
	s.RegisterNode(twoFloat32Node("p2"))
	s.RegisterNode(NodeMetadata{
		Key: "c",
		Inputs: []ParamSpec{
			{Name: "in0", DataType: telem.Float32},
			{Name: "in1", DataType: telem.Float32},
		},
	})
	s.AddEdge(Edge{Source: Handle{"p1", "out"}, Target: Handle{"c", "in0"}})
	s.AddEdge(Edge{Source: Handle{"p2", "out"}, Target: Handle{"c", "in1"}})

	out1 := telem.NewSeries(telem.Float32, 1)
	out1.WriteFloat(1.0)
	s.SetOutput("p1", "out", out1, telem.NewSeries(telem.Timestamp, 0))

	require.False(t, s.RefreshInputs("c"), "only one producer has fired")

	out2 := telem.NewSeries(telem.Float32, 1)
	out2.WriteFloat(2.0)
	s.SetOutput("p2", "out", out2, telem.NewSeries(telem.Timestamp, 0))

	require.True(t, s.RefreshInputs("c"), "both producers have now fired")

	in0, _ := s.Input("c", "in0")
	in1, _ := s.Input("c", "in1")
	require.Equal(t, 1, in0.Series.Len())
	require.Equal(t, 1, in1.Series.Len())
}

func TestPersistentStateIsolationPerNode(t *testing.T) {
	s := New()
	s.SetCurrentNodeKey("A")
	s.Persistent().StorePrimitive(1, 100.0)
	s.SetCurrentNodeKey("B")
	s.Persistent().StorePrimitive(1, 200.0)

	s.SetCurrentNodeKey("A")
	require.Equal(t, 100.0, s.Persistent().LoadPrimitive(1, 0.0))
	s.SetCurrentNodeKey("B")
	require.Equal(t, 200.0, s.Persistent().LoadPrimitive(1, 0.0))
}

func TestPersistentSeriesSurvivesAcrossFlush(t *testing.T) {
	s := New()
	s.SetCurrentNodeKey("A")
	series := telem.NewSeries(telem.Float64, 2)
	series.WriteFloat(100)
	series.WriteFloat(200)
	s.Persistent().StoreSeries(1, series)

	s.Flush()

	loaded := s.Persistent().LoadSeries(1, telem.NewSeries(telem.Float64, 0))
	require.Equal(t, 2, loaded.Len())
	require.InDelta(t, 100.0, loaded.At(0), 1e-9)
	require.InDelta(t, 200.0, loaded.At(1), 1e-9)
}

func TestIngestSilentlyDropsUnregisteredChannel(t *testing.T) {
	s := New()
	f := telem.NewFrame()
	f.Append(99, telem.NewSeries(telem.Float32, 0))
	require.NotPanics(t, func() { s.Ingest(f) })
}
