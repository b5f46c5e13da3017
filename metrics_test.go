package arc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotStartsEmpty(t *testing.T) {
	m := NewMetrics()
	snap := m.Snapshot()
	require.Zero(t, snap.TickCount)
	require.Zero(t, snap.NodeInvocations)
}

func TestRecordTickAccumulatesCountsAndLatency(t *testing.T) {
	m := NewMetrics()
	m.RecordTick(1_000_000, 3)
	m.RecordTick(2_000_000, 2)

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.TickCount)
	require.Equal(t, uint64(5), snap.NodeInvocations)
	require.Equal(t, uint64(1_500_000), snap.AvgTickLatencyNs)
}

func TestRecordNodeErrorAffectsErrorRate(t *testing.T) {
	m := NewMetrics()
	m.RecordTick(1_000, 10)
	m.RecordNodeError()
	m.RecordNodeError()

	snap := m.Snapshot()
	require.InDelta(t, 20.0, snap.ErrorRate, 0.001)
}

func TestQueueDepthTracksMaxAndAverage(t *testing.T) {
	m := NewMetrics()
	m.RecordInputQueueDepth(3)
	m.RecordInputQueueDepth(9)
	m.RecordInputQueueDepth(1)

	snap := m.Snapshot()
	require.Equal(t, uint32(9), snap.MaxInputQueueDepth)
	require.InDelta(t, float64(13)/3, snap.AvgInputQueueDepth, 0.001)
}

func TestMetricsObserverDelegatesToMetrics(t *testing.T) {
	m := NewMetrics()
	obs := NewMetricsObserver(m)
	obs.ObserveTick(5_000, 1)
	obs.ObserveWASMPanic()
	obs.ObserveNodeError()

	snap := m.Snapshot()
	require.Equal(t, uint64(1), snap.TickCount)
	require.Equal(t, uint64(1), snap.WASMPanics)
	require.Equal(t, uint64(1), snap.NodeErrors)
}

func TestNoOpObserverDoesNothing(t *testing.T) {
	var o NoOpObserver
	require.NotPanics(t, func() {
		o.ObserveTick(1, 1)
		o.ObserveNodeError()
		o.ObserveWASMPanic()
		o.ObserveInputQueueDepth(1)
		o.ObserveOutputQueueDepth(1)
	})
}
