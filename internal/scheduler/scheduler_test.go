package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/state"
	"github.com/arclabs/arc-runtime/internal/telem"
)

type recordingNode struct {
	key      string
	invokes  *[]string
	failOnce bool
	failed   bool
}

func (n *recordingNode) Invoke(st *state.State) error {
	*n.invokes = append(*n.invokes, n.key)
	out := telem.NewSeries(telem.Float32, 1)
	out.WriteFloat(1.0)
	st.SetOutput(n.key, "out", out, telem.NewSeries(telem.Timestamp, 0))
	if n.failOnce && !n.failed {
		n.failed = true
		return errors.New("boom")
	}
	return nil
}

func TestTopoSortRejectsCycle(t *testing.T) {
	_, err := topoSort([]string{"a", "b"}, map[string][]string{
		"a": {"b"},
		"b": {"a"},
	})
	require.Error(t, err)
}

func TestTickFiresInTopologicalOrderOnFirstTick(t *testing.T) {
	st := state.New()
	st.RegisterNode(state.NodeMetadata{Key: "a", Outputs: []state.ParamSpec{{Name: "out", DataType: telem.Float32}}})
	st.RegisterNode(state.NodeMetadata{
		Key:     "b",
		Inputs:  []state.ParamSpec{{Name: "in", DataType: telem.Float32}},
		Outputs: []state.ParamSpec{{Name: "out", DataType: telem.Float32}},
	})
	st.AddEdge(state.Edge{Source: state.Handle{NodeKey: "a", Param: "out"}, Target: state.Handle{NodeKey: "b", Param: "in"}})

	var invokes []string
	sched, err := New(
		[]string{"a", "b"},
		map[string][]string{"b": {"a"}},
		map[string]Node{
			"a": &recordingNode{key: "a", invokes: &invokes},
			"b": &recordingNode{key: "b", invokes: &invokes},
		},
		1,
	)
	require.NoError(t, err)

	var errs []error
	sched.Tick(st, func(e error) { errs = append(errs, e) })

	require.Equal(t, []string{"a", "b"}, invokes)
	require.Empty(t, errs)
}

func TestTickReportsNodeErrorsWithoutAborting(t *testing.T) {
	st := state.New()
	st.RegisterNode(state.NodeMetadata{Key: "a", Outputs: []state.ParamSpec{{Name: "out", DataType: telem.Float32}}})
	st.RegisterNode(state.NodeMetadata{Key: "b", Outputs: []state.ParamSpec{{Name: "out", DataType: telem.Float32}}})

	var invokes []string
	sched, err := New(
		[]string{"a", "b"},
		map[string][]string{},
		map[string]Node{
			"a": &recordingNode{key: "a", invokes: &invokes, failOnce: true},
			"b": &recordingNode{key: "b", invokes: &invokes},
		},
		1,
	)
	require.NoError(t, err)

	var errs []error
	sched.Tick(st, func(e error) { errs = append(errs, e) })

	require.Equal(t, []string{"a", "b"}, invokes)
	require.Len(t, errs, 1)
}

func TestTickOnlyFiresTriggeredNodesAfterFirstTick(t *testing.T) {
	st := state.New()
	st.RegisterNode(state.NodeMetadata{Key: "a", Outputs: []state.ParamSpec{{Name: "out", DataType: telem.Float32}}})

	var invokes []string
	sched, err := New([]string{"a"}, nil, map[string]Node{"a": &recordingNode{key: "a", invokes: &invokes}}, 1)
	require.NoError(t, err)

	sched.Tick(st, nil)
	sched.Tick(st, nil)

	require.Equal(t, []string{"a"}, invokes, "second tick should not re-fire a node with no new watermark")
}
