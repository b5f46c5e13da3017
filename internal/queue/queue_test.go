package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arclabs/arc-runtime/internal/errs"
	"github.com/arclabs/arc-runtime/internal/telem"
)

func frame(v float32) *telem.Frame {
	s := telem.NewSeries(telem.Float32, 1)
	s.WriteFloat(float64(v))
	f := telem.NewFrame()
	f.Append(1, s)
	return f
}

func TestPushBackpressure(t *testing.T) {
	q := New(1, errs.QueueFullInput)

	require.NoError(t, q.Push(frame(1.0)))

	err := q.Push(frame(2.0))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.QueueFullInput))

	err = q.Push(frame(3.0))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.QueueFullInput))
}

func TestPopOrdering(t *testing.T) {
	q := New(4, errs.QueueFullOutput)
	for _, v := range []float32{1, 2, 3} {
		require.NoError(t, q.Push(frame(v)))
	}
	for _, want := range []float32{1, 2, 3} {
		f, ok := q.Pop()
		require.True(t, ok)
		got := f.Series[0].At(0).(float32)
		require.Equal(t, want, got)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	q := New(2, errs.QueueFullInput)

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Pop returned before any frame was pushed")
	default:
	}

	require.NoError(t, q.Push(frame(1.0)))

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after push")
	}
}

func TestCloseUnblocksPop(t *testing.T) {
	q := New(2, errs.QueueFullInput)

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after close")
	}
}

func TestPushAfterCloseReturnsRuntimeClosed(t *testing.T) {
	q := New(2, errs.QueueFullInput)
	q.Close()

	err := q.Push(frame(1.0))
	require.Error(t, err)
	require.True(t, errs.IsKind(err, errs.RuntimeClosed))
}

func TestRestartViaFreshQueue(t *testing.T) {
	q := New(1, errs.QueueFullInput)
	q.Close()
	require.Error(t, q.Push(frame(1.0)))

	q = New(1, errs.QueueFullInput)
	require.NoError(t, q.Push(frame(1.0)), "a freshly constructed queue must accept writes again")
}
