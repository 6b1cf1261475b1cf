package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for talevault.
type Metrics struct {
	// Variable store metrics
	variableReads  *prometheus.CounterVec
	variableWrites *prometheus.CounterVec
	typeConflicts  *prometheus.CounterVec
	storeClears    prometheus.Counter
	storeOpLatency *prometheus.HistogramVec

	// Script metrics
	scriptRuns     *prometheus.CounterVec
	scriptDuration *prometheus.HistogramVec

	// Error metrics
	errorsByClass *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		variableReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "variable_reads_total",
				Help:      "Total number of variable reads",
			},
			[]string{"kind", "result"},
		),
		variableWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "variable_writes_total",
				Help:      "Total number of variable writes",
			},
			[]string{"kind"},
		),
		typeConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "type_conflicts_total",
				Help:      "Total number of writes rejected because the name held a different kind",
			},
			[]string{"kind"},
		),
		storeClears: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_clears_total",
				Help:      "Total number of full store clears",
			},
		),
		storeOpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_op_duration_seconds",
				Help:      "Duration of variable store operations in seconds",
				Buckets:   buckets,
			},
			[]string{"operation"},
		),

		scriptRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "script_runs_total",
				Help:      "Total number of dialogue script runs",
			},
			[]string{"status"},
		),
		scriptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "script_run_duration_seconds",
				Help:      "Duration of dialogue script runs in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),

		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
	}

	registry.MustRegister(
		m.variableReads,
		m.variableWrites,
		m.typeConflicts,
		m.storeClears,
		m.storeOpLatency,
		m.scriptRuns,
		m.scriptDuration,
		m.errorsByClass,
	)

	return m, nil
}

// Store Metrics

// RecordVariableRead records a read by kind and whether it found a row.
func (m *Metrics) RecordVariableRead(kind string, found bool) {
	if m.variableReads == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.variableReads.WithLabelValues(kind, result).Inc()
}

// RecordVariableWrite records a successful write by kind.
func (m *Metrics) RecordVariableWrite(kind string) {
	if m.variableWrites == nil {
		return
	}
	m.variableWrites.WithLabelValues(kind).Inc()
}

// RecordTypeConflict records a write rejected by the one-kind-per-name rule.
func (m *Metrics) RecordTypeConflict(kind string) {
	if m.typeConflicts == nil {
		return
	}
	m.typeConflicts.WithLabelValues(kind).Inc()
}

// RecordStoreClear records a full clear of all variable tables.
func (m *Metrics) RecordStoreClear() {
	if m.storeClears == nil {
		return
	}
	m.storeClears.Inc()
}

// RecordStoreOp records the latency of a store operation.
func (m *Metrics) RecordStoreOp(operation string, duration time.Duration) {
	if m.storeOpLatency == nil {
		return
	}
	m.storeOpLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Script Metrics

// RecordScriptRun records a completed script run with status and duration.
func (m *Metrics) RecordScriptRun(status string, duration time.Duration) {
	if m.scriptRuns == nil {
		return
	}
	m.scriptRuns.WithLabelValues(status).Inc()
	m.scriptDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// Error Metrics

// RecordError records an error by class.
func (m *Metrics) RecordError(errorClass string) {
	if m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration is a helper to time an operation and record it.
func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(t.Duration().Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
