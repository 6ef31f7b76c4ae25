// Package metrics provides Prometheus metrics for the task prioritization
// engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric of the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Scoring
	tasksScored    *prometheus.CounterVec
	scoringErrors  *prometheus.CounterVec
	scoringLatency prometheus.Histogram

	// Audit log
	recordsWritten     prometheus.Counter
	recordWriteErrors  prometheus.Counter
	recordsSkipped     prometheus.Counter
	auditFiles         prometheus.Gauge
	summaryRuns        prometheus.Counter
	summaryDurationMs  prometheus.Histogram
	summaryLastRecords prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	globalMu       sync.RWMutex         //nolint:gochecknoglobals // guards the pair below
	globalManager  *Manager             //nolint:gochecknoglobals // singleton used by the package functions
	customRegistry *prometheus.Registry //nolint:gochecknoglobals // registry without default Go collectors
)

func init() { //nolint:gochecknoinits // usable before Init is called
	_ = Init()
}

// Init replaces the global manager with one built from opts on a fresh
// registry, so it may be called again after configuration is loaded.
// A registry given through WithPrometheusRegistry is ignored here.
func Init(opts ...Option) *Manager {
	reg := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	m := NewManager(append(all, WithPrometheusRegistry(reg))...)

	globalMu.Lock()
	globalManager, customRegistry = m, reg
	globalMu.Unlock()
	return m
}

func global() *Manager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// Enabled reports whether m records anything.
func (m *Manager) Enabled() bool { return m.enabled }

// Namespace returns the metric name prefix.
func (m *Manager) Namespace() string { return m.namespace }

// NewManager creates a metrics manager. Metrics are registered on
// prometheus.DefaultRegisterer unless WithPrometheusRegistry is given.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "taskprio",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.tasksScored = auto.NewCounterVec(
		m.counterOpts("tasks_scored_total", "Total number of tasks scored by priority level"),
		[]string{"level"},
	)
	m.scoringErrors = auto.NewCounterVec(
		m.counterOpts("scoring_errors_total", "Total number of rejected scoring requests by kind"),
		[]string{"kind"},
	)
	m.scoringLatency = auto.NewHistogram(
		m.histogramOpts("scoring_latency_milliseconds", "Scoring latency in milliseconds including the audit write"),
	)

	m.recordsWritten = auto.NewCounter(
		m.counterOpts("records_written_total", "Total number of score records written to the audit log"),
	)
	m.recordWriteErrors = auto.NewCounter(
		m.counterOpts("record_write_errors_total", "Total number of failed audit log writes"),
	)
	m.recordsSkipped = auto.NewCounter(
		m.counterOpts("records_skipped_total", "Total number of malformed audit entries skipped by summaries"),
	)
	m.auditFiles = auto.NewGauge(
		m.gaugeOpts("audit_files", "Number of audit log files seen by the last summary"),
	)
	m.summaryRuns = auto.NewCounter(
		m.counterOpts("summary_runs_total", "Total number of summaries built"),
	)
	m.summaryDurationMs = auto.NewHistogram(
		m.histogramOpts("summary_duration_milliseconds", "Summary build duration in milliseconds"),
	)
	m.summaryLastRecords = auto.NewGauge(
		m.gaugeOpts("summary_last_records", "Number of records summarized by the last summary"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)
}

// Manager methods.

func (m *Manager) RecordTaskScored(level string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.tasksScored.WithLabelValues(level).Inc()
	m.scoringLatency.Observe(latencyMs)
}

func (m *Manager) RecordScoringError(kind string) {
	if m.enabled {
		m.scoringErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Manager) RecordRecordsWritten(n int) {
	if m.enabled && n > 0 {
		m.recordsWritten.Add(float64(n))
	}
}

func (m *Manager) RecordRecordWriteError() {
	if m.enabled {
		m.recordWriteErrors.Inc()
	}
}

// RecordSummaryRun records one summary: its duration, the audit files it
// read, the records it kept and the entries it skipped.
func (m *Manager) RecordSummaryRun(durationMs float64, files, records, skipped int) {
	if !m.enabled {
		return
	}
	m.summaryRuns.Inc()
	m.summaryDurationMs.Observe(durationMs)
	m.auditFiles.Set(float64(files))
	m.summaryLastRecords.Set(float64(records))
	if skipped > 0 {
		m.recordsSkipped.Add(float64(skipped))
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Global convenience functions.

// RecordTaskScored counts a scored task and observes its latency.
func RecordTaskScored(level string, latencyMs float64) { global().RecordTaskScored(level, latencyMs) }

// RecordScoringError counts a rejected scoring request; kind is a short
// machine-readable reason such as "invalid_factor".
func RecordScoringError(kind string) { global().RecordScoringError(kind) }

// RecordRecordsWritten counts records persisted to the audit log.
func RecordRecordsWritten(n int) { global().RecordRecordsWritten(n) }

// RecordRecordWriteError counts a failed audit log write.
func RecordRecordWriteError() { global().RecordRecordWriteError() }

// RecordSummaryRun records one summary build.
func RecordSummaryRun(durationMs float64, files, records, skipped int) {
	global().RecordSummaryRun(durationMs, files, records, skipped)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	global().RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the custom registry backing the global functions.
func GetRegistry() *prometheus.Registry {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return customRegistry
}
