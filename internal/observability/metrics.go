// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Simulation metrics
	SimulationsTotal  *prometheus.CounterVec
	SimulationErrors  *prometheus.CounterVec
	ConfidencePct     prometheus.Histogram
	AnalyticsFailures prometheus.Counter
	DecisionsTotal    *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec

	// Feed metrics
	FeedSubscribers prometheus.Gauge
	FeedDropped     prometheus.Counter

	// Catalog metrics
	TechnologiesSubmitted prometheus.Counter
	TechnologiesApproved  prometheus.Counter
	UsersRegistered       *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered on its own registry,
// together with the Go and process collectors.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "inara_impact"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		SimulationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "runs_total",
			Help:      "Total number of simulations by outcome",
		}, []string{"outcome"}),
		SimulationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "errors_total",
			Help:      "Total number of rejected simulations by error kind",
		}, []string{"kind"}),
		ConfidencePct: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "confidence_pct",
			Help:      "Confidence score of produced estimates",
			Buckets:   []float64{60, 70, 80, 90, 95},
		}),
		AnalyticsFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "analytics_failures_total",
			Help:      "Total number of simulation events that failed to reach the analytics store",
		}),
		DecisionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "evaluations_total",
			Help:      "Total number of decision gate evaluations by verdict",
		}, []string{"decision"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),

		FeedSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Number of connected live feed subscribers",
		}),
		FeedDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "dropped_subscribers_total",
			Help:      "Total number of subscribers dropped for falling behind",
		}),

		TechnologiesSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "technologies_submitted_total",
			Help:      "Total number of technologies submitted by providers",
		}),
		TechnologiesApproved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "technologies_approved_total",
			Help:      "Total number of technologies approved by admins",
		}),
		UsersRegistered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "users_registered_total",
			Help:      "Total number of registered users by role",
		}, []string{"role"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests. A nil *Metrics
// yields an empty registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// RecordSimulation records a successful simulation.
func (m *Metrics) RecordSimulation(hasPayback bool, confidencePct int) {
	if m == nil {
		return
	}
	outcome := "no_payback"
	if hasPayback {
		outcome = "payback"
	}
	m.SimulationsTotal.WithLabelValues(outcome).Inc()
	m.ConfidencePct.Observe(float64(confidencePct))
}

// RecordSimulationError records a rejected simulation by error kind.
func (m *Metrics) RecordSimulationError(kind string) {
	if m == nil {
		return
	}
	m.SimulationErrors.WithLabelValues(kind).Inc()
}

// RecordAnalyticsFailure records a best-effort analytics write that failed.
func (m *Metrics) RecordAnalyticsFailure() {
	if m == nil {
		return
	}
	m.AnalyticsFailures.Inc()
}

// RecordDecision records a decision gate verdict.
func (m *Metrics) RecordDecision(decision string) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordHTTPRequest records HTTP request latency.
func (m *Metrics) RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, method, statusClass(status)).Observe(elapsed.Seconds())
}

// SetFeedSubscribers updates the live feed subscriber gauge.
func (m *Metrics) SetFeedSubscribers(n int) {
	if m == nil {
		return
	}
	m.FeedSubscribers.Set(float64(n))
}

// RecordFeedDrop records a subscriber dropped for falling behind.
func (m *Metrics) RecordFeedDrop() {
	if m == nil {
		return
	}
	m.FeedDropped.Inc()
}

// RecordTechnologySubmitted records a provider submission.
func (m *Metrics) RecordTechnologySubmitted() {
	if m == nil {
		return
	}
	m.TechnologiesSubmitted.Inc()
}

// RecordTechnologyApproved records an admin approval.
func (m *Metrics) RecordTechnologyApproved() {
	if m == nil {
		return
	}
	m.TechnologiesApproved.Inc()
}

// RecordUserRegistered records a registration by role.
func (m *Metrics) RecordUserRegistered(role string) {
	if m == nil {
		return
	}
	m.UsersRegistered.WithLabelValues(role).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
