// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	SimulationRuns     *prometheus.CounterVec
	SimulationDuration prometheus.Histogram
	AffectedNodes      prometheus.Histogram
	SnapshotFetch      *prometheus.HistogramVec
	SnapshotSize       *prometheus.GaugeVec

	// Import metrics
	RecordsImported *prometheus.CounterVec
	RecordsSkipped  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	StreamConnections   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered with reg.
// A nil reg uses the default Prometheus registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "food_trade_twin"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		SimulationRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulation runs by outcome",
		}, []string{"outcome"}),
		SimulationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "duration_seconds",
			Help:      "End-to-end simulation duration including snapshot fetch",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		AffectedNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "affected_nodes",
			Help:      "Number of nodes marked affected per simulation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		}),
		SnapshotFetch: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "snapshot_fetch_seconds",
			Help:      "Snapshot fetch latency by status",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"status"}),
		SnapshotSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "last_snapshot_size",
			Help:      "Node and edge count of the last fetched snapshot",
		}, []string{"kind"}),

		RecordsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "records_total",
			Help:      "Total number of records written by the importer",
		}, []string{"kind"}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "records_skipped_total",
			Help:      "Total number of records dropped by the importer by reason",
		}, []string{"reason"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		StreamConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "stream_connections",
			Help:      "Open simulation stream websocket connections",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordSimulation records one simulation run.
func RecordSimulation(outcome string, seconds float64, affected int) {
	DefaultMetrics.SimulationRuns.WithLabelValues(outcome).Inc()
	DefaultMetrics.SimulationDuration.Observe(seconds)
	if outcome == "ok" || outcome == "noop" {
		DefaultMetrics.AffectedNodes.Observe(float64(affected))
	}
}

// RecordSnapshotFetch records snapshot fetch latency and size.
func RecordSnapshotFetch(seconds float64, nodes, edges int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.SnapshotFetch.WithLabelValues(status).Observe(seconds)
	if err == nil {
		DefaultMetrics.SnapshotSize.WithLabelValues("nodes").Set(float64(nodes))
		DefaultMetrics.SnapshotSize.WithLabelValues("edges").Set(float64(edges))
	}
}

// RecordImported adds imported records of a kind ("countries", "node_states", "trade_flows").
func RecordImported(kind string, n int) {
	DefaultMetrics.RecordsImported.WithLabelValues(kind).Add(float64(n))
}

// RecordSkipped adds dropped import records for a reason.
func RecordSkipped(reason string, n int) {
	DefaultMetrics.RecordsSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(route string, code int, seconds float64) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(route).Observe(seconds)
}

// StreamOpened increments the open stream gauge.
func StreamOpened() {
	DefaultMetrics.StreamConnections.Inc()
}

// StreamClosed decrements the open stream gauge.
func StreamClosed() {
	DefaultMetrics.StreamConnections.Dec()
}
