// Package metrics exposes Prometheus instrumentation for the scheduler.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the global metrics container.
type Metrics struct {
	// Batch-run metrics
	BatchesTotal    *prometheus.CounterVec
	BatchDuration   *prometheus.HistogramVec
	FlowsTotal      *prometheus.CounterVec
	FlowRateMbps    *prometheus.HistogramVec
	RetriesPerFlow  *prometheus.HistogramVec

	// Topology/ledger metrics
	TopologyNodesTotal  *prometheus.GaugeVec
	TopologyEdgesTotal  *prometheus.GaugeVec
	LedgerBreakpoints   *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Runtime metrics
	MemoryUsage *prometheus.GaugeVec
	Goroutines  prometheus.Gauge

	// Build info
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics builds and registers the metrics container.
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		BatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batches_total",
				Help:      "Total number of scheduled batches",
			},
			[]string{"algorithm", "status"},
		),

		BatchDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "batch_duration_seconds",
				Help:      "Wall-clock duration of a batch scheduling run",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"algorithm"},
		),

		FlowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flows_total",
				Help:      "Total number of flows processed, by admission outcome",
			},
			[]string{"algorithm", "outcome"}, // outcome: admitted, rejected
		),

		FlowRateMbps: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flow_allocated_rate_mbps",
				Help:      "Allocated bottleneck rate of admitted flows",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"algorithm"},
		),

		RetriesPerFlow: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "flow_path_retries",
				Help:      "Number of path retries (edge exclusions) before a flow's final outcome",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"algorithm"},
		),

		TopologyNodesTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "topology_nodes",
				Help:      "Number of nodes in the active topology",
			},
			[]string{"layer"},
		),

		TopologyEdgesTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "topology_edges",
				Help:      "Number of directed edges in the active topology",
			},
			[]string{},
		),

		LedgerBreakpoints: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "ledger_breakpoints_per_edge",
				Help:      "Number of rate breakpoints held per edge after a batch commits",
				Buckets:   []float64{2, 4, 8, 16, 32, 64, 128, 256},
			},
			[]string{},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of schedule-cache hits",
			},
			[]string{},
		),

		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of schedule-cache misses",
			},
			[]string{},
		),

		MemoryUsage: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "memory_usage_bytes",
				Help:      "Current memory usage",
			},
			[]string{"type"},
		),

		Goroutines: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "goroutines",
				Help:      "Current number of goroutines",
			},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service build information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get returns the process-wide metrics container, initializing it with
// defaults on first use.
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("flowsched", "")
	}
	return defaultMetrics
}

// RecordBatch records the outcome and duration of a batch scheduling run.
func (m *Metrics) RecordBatch(algorithm string, ok bool, duration time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	m.BatchesTotal.WithLabelValues(algorithm, status).Inc()
	m.BatchDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordFlowAdmitted records an admitted flow's allocated rate and retry count.
func (m *Metrics) RecordFlowAdmitted(algorithm string, rateMbps float64, retries int) {
	m.FlowsTotal.WithLabelValues(algorithm, "admitted").Inc()
	m.FlowRateMbps.WithLabelValues(algorithm).Observe(rateMbps)
	m.RetriesPerFlow.WithLabelValues(algorithm).Observe(float64(retries))
}

// RecordFlowRejected records a rejected flow's retry count.
func (m *Metrics) RecordFlowRejected(algorithm string, retries int) {
	m.FlowsTotal.WithLabelValues(algorithm, "rejected").Inc()
	m.RetriesPerFlow.WithLabelValues(algorithm).Observe(float64(retries))
}

// RecordTopologySize records the node and edge counts of the active topology.
func (m *Metrics) RecordTopologySize(coreNodes, aggrNodes, edgeNodes, hostNodes, edges int) {
	m.TopologyNodesTotal.WithLabelValues("core").Set(float64(coreNodes))
	m.TopologyNodesTotal.WithLabelValues("aggregation").Set(float64(aggrNodes))
	m.TopologyNodesTotal.WithLabelValues("edge").Set(float64(edgeNodes))
	m.TopologyNodesTotal.WithLabelValues("host").Set(float64(hostNodes))
	m.TopologyEdgesTotal.WithLabelValues().Set(float64(edges))
}

// RecordLedgerBreakpoints records the per-edge breakpoint count distribution.
func (m *Metrics) RecordLedgerBreakpoints(counts []int) {
	for _, c := range counts {
		m.LedgerBreakpoints.WithLabelValues().Observe(float64(c))
	}
}

// RecordCacheHit increments the cache hit counter.
func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.WithLabelValues().Inc()
}

// RecordCacheMiss increments the cache miss counter.
func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.WithLabelValues().Inc()
}

// SetServiceInfo publishes build metadata as a labeled gauge.
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler returns the HTTP handler serving /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer runs an HTTP server exposing /metrics and /health on
// port. It blocks until the server stops and returns its error.
func StartMetricsServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, write failure is not actionable
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}
