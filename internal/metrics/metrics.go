// Package metrics exposes Prometheus instrumentation for the task
// service and its background components (sync, compaction, daemon
// sweeps), grounded on the namespace/subsystem layout
// jalet-mcp-fabric's gateway metrics package uses.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dex"

// Collector owns a private Prometheus registry so multiple Services in
// the same process (tests, the daemon driving several projects) never
// collide on metric registration.
type Collector struct {
	registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	syncTotal         *prometheus.CounterVec
	archiveTotal      *prometheus.CounterVec
	activeTasks       prometheus.Gauge
}

// New registers a fresh set of collectors against a private registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Total task service operations by name and result.",
		}, []string{"op", "result"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Task service operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "githubsync",
			Name:      "dispatches_total",
			Help:      "Total GitHub sync dispatch attempts by result.",
		}, []string{"result"}),
		archiveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compactor",
			Name:      "archived_roots_total",
			Help:      "Total lineage roots transferred to the archive log.",
		}, []string{"result"}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "active_tasks",
			Help:      "Current number of tasks in the active store.",
		}),
	}
	reg.MustRegister(c.operationsTotal, c.operationDuration, c.syncTotal, c.archiveTotal, c.activeTasks)
	return c
}

// NewNop returns a Collector wired to an isolated registry whose
// results are never scraped — for tests and call sites that don't want
// to wire an HTTP handler.
func NewNop() *Collector {
	return New()
}

// RecordOperation increments the operations counter and is the single
// call site Service.txn uses after every mutating call.
func (c *Collector) RecordOperation(op, result string) {
	if c == nil {
		return
	}
	c.operationsTotal.WithLabelValues(op, result).Inc()
}

// ObserveOperationDuration records how long op took.
func (c *Collector) ObserveOperationDuration(op string, seconds float64) {
	if c == nil {
		return
	}
	c.operationDuration.WithLabelValues(op).Observe(seconds)
}

// RecordSync increments the GitHub sync dispatch counter.
func (c *Collector) RecordSync(result string) {
	if c == nil {
		return
	}
	c.syncTotal.WithLabelValues(result).Inc()
}

// RecordArchive increments the archival counter.
func (c *Collector) RecordArchive(result string) {
	if c == nil {
		return
	}
	c.archiveTotal.WithLabelValues(result).Inc()
}

// SetActiveTasks publishes the current active-store size.
func (c *Collector) SetActiveTasks(n int) {
	if c == nil {
		return
	}
	c.activeTasks.Set(float64(n))
}

// Handler returns the /metrics HTTP handler for this Collector's
// private registry, for wiring into the daemon's listener.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
