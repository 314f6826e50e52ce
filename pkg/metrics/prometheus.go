// Package metrics provides Prometheus metrics for report generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the report metrics. A nil *Manager records nothing, so
// callers never need to check.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         *prometheus.Registry

	reportsGenerated prometheus.Counter
	reportsFailed    *prometheus.CounterVec
	pagesRendered    prometheus.Counter
	renderDuration   prometheus.Histogram
	reportDuration   prometheus.Histogram

	httpRequests *prometheus.CounterVec
}

// NewManager creates a metrics manager on its own registry unless
// WithPrometheusRegistry says otherwise.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorepdf",
		histogramBuckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.reportsGenerated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_generated_total",
		Help:        "Total number of reports written successfully",
		ConstLabels: m.constLabels,
	})

	m.reportsFailed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reports_failed_total",
		Help:        "Total number of report runs aborted, by failure kind",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.pagesRendered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "pages_rendered_total",
		Help:        "Total number of chart pages rendered",
		ConstLabels: m.constLabels,
	})

	m.renderDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "render_duration_seconds",
		Help:        "Time to lay out and rasterize one chart",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.reportDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "report_duration_seconds",
		Help:        "Time to produce a whole report",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests, by route and status code",
		ConstLabels: m.constLabels,
	}, []string{"route", "method", "code"})
}

// RecordReport records a finished report.
func (m *Manager) RecordReport(took time.Duration) {
	if m == nil {
		return
	}
	m.reportsGenerated.Inc()
	m.reportDuration.Observe(took.Seconds())
}

// RecordFailure records an aborted report run.
func (m *Manager) RecordFailure(kind string) {
	if m == nil {
		return
	}
	m.reportsFailed.WithLabelValues(kind).Inc()
}

// RecordPage records one rendered chart page.
func (m *Manager) RecordPage(took time.Duration) {
	if m == nil {
		return
	}
	m.pagesRendered.Inc()
	m.renderDuration.Observe(took.Seconds())
}

// RecordHTTPRequest counts one served request.
func (m *Manager) RecordHTTPRequest(route, method, code string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, code).Inc()
}

// Registry returns the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
