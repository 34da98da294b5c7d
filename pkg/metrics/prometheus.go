// Package metrics provides Prometheus metrics for the estimation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the estimation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Pipeline metrics - what the estimator is doing
	estimatesTotal    prometheus.Counter
	correctionsTotal  prometheus.Counter
	validationErrors  prometheus.Counter
	modelErrors       prometheus.Counter
	predictionLatency prometheus.Histogram

	// Sink metrics - dual-backend persistence health
	sinkAppends *prometheus.CounterVec
	sinkErrors  *prometheus.CounterVec
	seedTotal   prometheus.Counter
	seedErrors  prometheus.Counter

	// Session metrics
	sessionCount prometheus.Gauge
	ledgerSize   prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "taksir",
		subsystem:        "estimator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.estimatesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "estimates_total",
		Help:      "Total number of successful estimations",
	})

	m.correctionsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "plausibility_corrections_total",
		Help:      "Total number of predictions replaced by the manual total",
	})

	m.validationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_errors_total",
		Help:      "Total number of rejected form submissions",
	})

	m.modelErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_errors_total",
		Help:      "Total number of model invocation failures",
	})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Histogram of end-to-end estimation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.sinkAppends = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sink_appends_total",
			Help:      "Total rows appended per sink backend",
		},
		[]string{"sink"},
	)

	m.sinkErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "sink_errors_total",
			Help:      "Total sink failures per backend and operation",
		},
		[]string{"sink", "operation"},
	)

	m.seedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_seeds_total",
		Help:      "Total ledger seeds from the remote sink",
	})

	m.seedErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_seed_errors_total",
		Help:      "Total failed ledger seeds (ledger fell back to empty)",
	})

	m.sessionCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_count",
		Help:      "Number of sessions currently stored",
	})

	m.ledgerSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_size",
		Help:      "Distribution of ledger sizes observed on render",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordEstimate increments the successful estimations counter.
func RecordEstimate() {
	globalManager.estimatesTotal.Inc()
}

// RecordCorrection increments the plausibility corrections counter.
func RecordCorrection() {
	globalManager.correctionsTotal.Inc()
}

// RecordValidationError increments the rejected submissions counter.
func RecordValidationError() {
	globalManager.validationErrors.Inc()
}

// RecordModelError increments the model failure counter.
func RecordModelError() {
	globalManager.modelErrors.Inc()
}

// RecordPredictionLatency records end-to-end estimation latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordSinkAppend counts one successful append on the named sink.
func RecordSinkAppend(sink string) {
	globalManager.sinkAppends.WithLabelValues(sink).Inc()
}

// RecordSinkError counts one failed sink operation.
func RecordSinkError(sink, operation string) {
	globalManager.sinkErrors.WithLabelValues(sink, operation).Inc()
}

// RecordSeed counts one ledger seed from the remote sink.
func RecordSeed() {
	globalManager.seedTotal.Inc()
}

// RecordSeedError counts one failed ledger seed.
func RecordSeedError() {
	globalManager.seedErrors.Inc()
}

// UpdateSessionCount updates the stored session gauge.
func UpdateSessionCount(count int) {
	globalManager.sessionCount.Set(float64(count))
}

// RecordLedgerSize observes the ledger size rendered to a user.
func RecordLedgerSize(size int) {
	globalManager.ledgerSize.Observe(float64(size))
}

// RecordHTTPRequest records an HTTP request by endpoint, method and status.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
