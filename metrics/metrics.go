// Package metrics exposes Prometheus instrumentation for the arcadeboard
// HTTP surface, submissions and storage calls.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arcadeboard/core"
)

// Submission kinds used as label values.
const (
	KindGuess = "guess"
	KindScore = "score"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom histogram buckets for latency metrics.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.buckets = buckets
		}
	}
}

// WithRegistry registers metrics on reg instead of a fresh private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithSystemCollectors adds the Go runtime and process collectors.
func WithSystemCollectors(enabled bool) Option {
	return func(m *Manager) { m.system = enabled }
}

// Manager owns every collector the service records to.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry
	system    bool

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	submissions         *prometheus.CounterVec
	rejections          *prometheus.CounterVec
	storageDuration     *prometheus.HistogramVec
	storageErrors       *prometheus.CounterVec
}

// New creates a Manager. Each Manager uses its own registry unless
// WithRegistry is given, so tests can build as many as they like.
func New(opts ...Option) *Manager {
	m := &Manager{
		namespace: "arcadeboard",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   m.buckets,
	}, []string{"route", "method"})

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_total",
		Help:      "Accepted guesses and scores",
	}, []string{"kind", "game_type"})

	m.rejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rejected_submissions_total",
		Help:      "Submissions rejected by validation",
	}, []string{"kind"})

	m.storageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "storage",
		Name:      "operation_duration_seconds",
		Help:      "Storage operation duration in seconds",
		Buckets:   m.buckets,
	}, []string{"operation"})

	m.storageErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "storage",
		Name:      "errors_total",
		Help:      "Failed storage operations",
	}, []string{"operation"})

	if m.system {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
}

// Registry returns the registry metrics are recorded on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records one served request.
func (m *Manager) RecordHTTPRequest(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordSubmission counts an accepted guess (game empty) or score.
func (m *Manager) RecordSubmission(kind string, game core.GameType) {
	m.submissions.WithLabelValues(kind, string(game)).Inc()
}

// RecordRejection counts a submission refused by validation.
func (m *Manager) RecordRejection(kind string) {
	m.rejections.WithLabelValues(kind).Inc()
}

// RecordStorageOperation records the latency of a storage call and counts it
// as failed when err is non-nil.
func (m *Manager) RecordStorageOperation(op string, d time.Duration, err error) {
	m.storageDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.storageErrors.WithLabelValues(op).Inc()
	}
}
