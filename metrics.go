package arc

import (
	"sync/atomic"
	"time"
)

// LatencyBuckets defines the tick-latency histogram buckets in
// nanoseconds. Buckets cover from 1us to 10s with logarithmic spacing.
var LatencyBuckets = []uint64{
	1_000,          // 1us
	10_000,         // 10us
	100_000,        // 100us
	1_000_000,      // 1ms
	10_000_000,     // 10ms
	100_000_000,    // 100ms
	1_000_000_000,  // 1s
	10_000_000_000, // 10s
}

const numLatencyBuckets = 8

// Metrics tracks performance and operational statistics for a Runtime.
type Metrics struct {
	// Tick-level counters
	TickCount       atomic.Uint64 // Total ticks executed
	NodeInvocations atomic.Uint64 // Total node Invoke calls across all ticks
	NodeErrors      atomic.Uint64 // Total node Invoke errors surfaced to the handler
	WASMPanics      atomic.Uint64 // Total WASM_PANIC conditions reported

	// Queue depth statistics (sampled by the runtime after each tick)
	InputQueueDepthTotal  atomic.Uint64
	InputQueueDepthCount  atomic.Uint64
	MaxInputQueueDepth    atomic.Uint32
	OutputQueueDepthTotal atomic.Uint64
	OutputQueueDepthCount atomic.Uint64
	MaxOutputQueueDepth   atomic.Uint32

	// Tick latency tracking
	TotalTickLatencyNs atomic.Uint64
	TickLatencyBuckets [numLatencyBuckets]atomic.Uint64

	// Runtime lifecycle
	StartTime atomic.Int64 // Runtime start timestamp (UnixNano)
	StopTime  atomic.Int64 // Runtime stop timestamp (UnixNano)
}

// NewMetrics creates a new metrics instance.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.StartTime.Store(time.Now().UnixNano())
	return m
}

// RecordTick records one completed tick: its latency and how many nodes
// actually fired.
func (m *Metrics) RecordTick(latencyNs uint64, nodesFired int) {
	m.TickCount.Add(1)
	m.NodeInvocations.Add(uint64(nodesFired))
	m.TotalTickLatencyNs.Add(latencyNs)
	for i, bucket := range LatencyBuckets {
		if latencyNs <= bucket {
			m.TickLatencyBuckets[i].Add(1)
		}
	}
}

// RecordNodeError records a node Invoke failure surfaced during a tick.
func (m *Metrics) RecordNodeError() {
	m.NodeErrors.Add(1)
}

// RecordWASMPanic records a WASM_PANIC condition.
func (m *Metrics) RecordWASMPanic() {
	m.WASMPanics.Add(1)
}

// RecordInputQueueDepth records a sample of the input queue's depth.
func (m *Metrics) RecordInputQueueDepth(depth uint32) {
	m.InputQueueDepthTotal.Add(uint64(depth))
	m.InputQueueDepthCount.Add(1)
	casMax(&m.MaxInputQueueDepth, depth)
}

// RecordOutputQueueDepth records a sample of the output queue's depth.
func (m *Metrics) RecordOutputQueueDepth(depth uint32) {
	m.OutputQueueDepthTotal.Add(uint64(depth))
	m.OutputQueueDepthCount.Add(1)
	casMax(&m.MaxOutputQueueDepth, depth)
}

func casMax(dst *atomic.Uint32, v uint32) {
	for {
		current := dst.Load()
		if v <= current {
			return
		}
		if dst.CompareAndSwap(current, v) {
			return
		}
	}
}

// Stop marks the runtime as stopped, fixing uptime for future snapshots.
func (m *Metrics) Stop() {
	m.StopTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time copy of Metrics, with derived rates.
type MetricsSnapshot struct {
	TickCount       uint64
	NodeInvocations uint64
	NodeErrors      uint64
	WASMPanics      uint64

	AvgInputQueueDepth  float64
	MaxInputQueueDepth  uint32
	AvgOutputQueueDepth float64
	MaxOutputQueueDepth uint32

	AvgTickLatencyNs uint64
	UptimeNs         uint64

	TickLatencyP50Ns  uint64
	TickLatencyP99Ns  uint64
	TickLatencyP999Ns uint64

	TickLatencyHistogram [numLatencyBuckets]uint64

	TicksPerSecond float64
	ErrorRate      float64 // NodeErrors as a percentage of NodeInvocations
}

// Snapshot creates a point-in-time snapshot of metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		TickCount:           m.TickCount.Load(),
		NodeInvocations:     m.NodeInvocations.Load(),
		NodeErrors:          m.NodeErrors.Load(),
		WASMPanics:          m.WASMPanics.Load(),
		MaxInputQueueDepth:  m.MaxInputQueueDepth.Load(),
		MaxOutputQueueDepth: m.MaxOutputQueueDepth.Load(),
	}

	if c := m.InputQueueDepthCount.Load(); c > 0 {
		snap.AvgInputQueueDepth = float64(m.InputQueueDepthTotal.Load()) / float64(c)
	}
	if c := m.OutputQueueDepthCount.Load(); c > 0 {
		snap.AvgOutputQueueDepth = float64(m.OutputQueueDepthTotal.Load()) / float64(c)
	}

	tickCount := snap.TickCount
	totalLatency := m.TotalTickLatencyNs.Load()
	if tickCount > 0 {
		snap.AvgTickLatencyNs = totalLatency / tickCount
	}

	startTime := m.StartTime.Load()
	stopTime := m.StopTime.Load()
	if stopTime > 0 {
		snap.UptimeNs = uint64(stopTime - startTime)
	} else {
		snap.UptimeNs = uint64(time.Now().UnixNano() - startTime)
	}

	if snap.UptimeNs > 0 {
		snap.TicksPerSecond = float64(tickCount) / (float64(snap.UptimeNs) / 1e9)
	}

	if snap.NodeInvocations > 0 {
		snap.ErrorRate = float64(snap.NodeErrors) / float64(snap.NodeInvocations) * 100.0
	}

	for i := 0; i < numLatencyBuckets; i++ {
		snap.TickLatencyHistogram[i] = m.TickLatencyBuckets[i].Load()
	}

	if tickCount > 0 {
		snap.TickLatencyP50Ns = m.calculatePercentile(tickCount, 0.50)
		snap.TickLatencyP99Ns = m.calculatePercentile(tickCount, 0.99)
		snap.TickLatencyP999Ns = m.calculatePercentile(tickCount, 0.999)
	}

	return snap
}

// calculatePercentile estimates the tick latency at the given percentile
// (0.0-1.0) using linear interpolation between histogram buckets.
func (m *Metrics) calculatePercentile(totalTicks uint64, percentile float64) uint64 {
	if totalTicks == 0 {
		return 0
	}
	targetCount := uint64(float64(totalTicks) * percentile)

	prevBucket := uint64(0)
	for i, bucket := range LatencyBuckets {
		bucketCount := m.TickLatencyBuckets[i].Load()
		if bucketCount >= targetCount {
			prevCount := uint64(0)
			if i > 0 {
				prevCount = m.TickLatencyBuckets[i-1].Load()
			}
			if bucketCount == prevCount {
				return bucket
			}
			fraction := float64(targetCount-prevCount) / float64(bucketCount-prevCount)
			return prevBucket + uint64(fraction*float64(bucket-prevBucket))
		}
		prevBucket = bucket
	}
	return LatencyBuckets[numLatencyBuckets-1]
}

// Observer allows pluggable metrics collection, mirrored onto Metrics by
// MetricsObserver but implementable independently.
type Observer interface {
	ObserveTick(latencyNs uint64, nodesFired int)
	ObserveNodeError()
	ObserveWASMPanic()
	ObserveInputQueueDepth(depth uint32)
	ObserveOutputQueueDepth(depth uint32)
}

// NoOpObserver is a no-op implementation of Observer.
type NoOpObserver struct{}

func (NoOpObserver) ObserveTick(uint64, int)         {}
func (NoOpObserver) ObserveNodeError()                {}
func (NoOpObserver) ObserveWASMPanic()                {}
func (NoOpObserver) ObserveInputQueueDepth(uint32)    {}
func (NoOpObserver) ObserveOutputQueueDepth(uint32)   {}

// MetricsObserver implements Observer using the built-in Metrics.
type MetricsObserver struct {
	metrics *Metrics
}

// NewMetricsObserver creates an observer that records to the given metrics.
func NewMetricsObserver(m *Metrics) *MetricsObserver {
	return &MetricsObserver{metrics: m}
}

func (o *MetricsObserver) ObserveTick(latencyNs uint64, nodesFired int) {
	o.metrics.RecordTick(latencyNs, nodesFired)
}

func (o *MetricsObserver) ObserveNodeError() {
	o.metrics.RecordNodeError()
}

func (o *MetricsObserver) ObserveWASMPanic() {
	o.metrics.RecordWASMPanic()
}

func (o *MetricsObserver) ObserveInputQueueDepth(depth uint32) {
	o.metrics.RecordInputQueueDepth(depth)
}

func (o *MetricsObserver) ObserveOutputQueueDepth(depth uint32) {
	o.metrics.RecordOutputQueueDepth(depth)
}

// Compile-time interface checks
var _ Observer = (*MetricsObserver)(nil)
var _ Observer = (*NoOpObserver)(nil)
