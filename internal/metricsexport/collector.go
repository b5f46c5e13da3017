// Package metricsexport wraps the root package's atomic Metrics counters
// as a github.com/prometheus/client_golang collector. It is purely
// additive instrumentation: Collect only reads the underlying atomics when
// scraped, so it never touches the tick path.
package metricsexport

import (
	"github.com/prometheus/client_golang/prometheus"

	arc "github.com/arclabs/arc-runtime"
)

var (
	tickCountDesc = prometheus.NewDesc(
		"arc_tick_count_total", "Total ticks executed.", nil, nil)
	nodeInvocationsDesc = prometheus.NewDesc(
		"arc_node_invocations_total", "Total node invocations across all ticks.", nil, nil)
	nodeErrorsDesc = prometheus.NewDesc(
		"arc_node_errors_total", "Total node invocation errors surfaced to the handler.", nil, nil)
	wasmPanicsDesc = prometheus.NewDesc(
		"arc_wasm_panics_total", "Total WASM_PANIC conditions reported.", nil, nil)
	avgTickLatencyDesc = prometheus.NewDesc(
		"arc_tick_latency_ns_avg", "Average tick latency in nanoseconds.", nil, nil)
	tickLatencyP99Desc = prometheus.NewDesc(
		"arc_tick_latency_ns_p99", "99th percentile tick latency in nanoseconds.", nil, nil)
	inputQueueDepthDesc = prometheus.NewDesc(
		"arc_input_queue_depth_avg", "Average observed input queue depth.", nil, nil)
	outputQueueDepthDesc = prometheus.NewDesc(
		"arc_output_queue_depth_avg", "Average observed output queue depth.", nil, nil)
	ticksPerSecondDesc = prometheus.NewDesc(
		"arc_ticks_per_second", "Observed tick rate since runtime start.", nil, nil)
)

// Collector implements prometheus.Collector over a *arc.Metrics.
type Collector struct {
	metrics *arc.Metrics
}

// NewCollector returns a Collector reading from m. Register it with a
// prometheus.Registry to expose it on a scrape endpoint.
func NewCollector(m *arc.Metrics) *Collector {
	return &Collector{metrics: m}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tickCountDesc
	ch <- nodeInvocationsDesc
	ch <- nodeErrorsDesc
	ch <- wasmPanicsDesc
	ch <- avgTickLatencyDesc
	ch <- tickLatencyP99Desc
	ch <- inputQueueDepthDesc
	ch <- outputQueueDepthDesc
	ch <- ticksPerSecondDesc
}

// Collect implements prometheus.Collector. It takes one Metrics snapshot
// per scrape so every exported value is internally consistent.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()

	ch <- prometheus.MustNewConstMetric(tickCountDesc, prometheus.CounterValue, float64(snap.TickCount))
	ch <- prometheus.MustNewConstMetric(nodeInvocationsDesc, prometheus.CounterValue, float64(snap.NodeInvocations))
	ch <- prometheus.MustNewConstMetric(nodeErrorsDesc, prometheus.CounterValue, float64(snap.NodeErrors))
	ch <- prometheus.MustNewConstMetric(wasmPanicsDesc, prometheus.CounterValue, float64(snap.WASMPanics))
	ch <- prometheus.MustNewConstMetric(avgTickLatencyDesc, prometheus.GaugeValue, float64(snap.AvgTickLatencyNs))
	ch <- prometheus.MustNewConstMetric(tickLatencyP99Desc, prometheus.GaugeValue, float64(snap.TickLatencyP99Ns))
	ch <- prometheus.MustNewConstMetric(inputQueueDepthDesc, prometheus.GaugeValue, snap.AvgInputQueueDepth)
	ch <- prometheus.MustNewConstMetric(outputQueueDepthDesc, prometheus.GaugeValue, snap.AvgOutputQueueDepth)
	ch <- prometheus.MustNewConstMetric(ticksPerSecondDesc, prometheus.GaugeValue, snap.TicksPerSecond)
}

var _ prometheus.Collector = (*Collector)(nil)
