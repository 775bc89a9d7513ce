package gallery

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the controller.
type Metrics struct {
	Registry        *prometheus.Registry
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ErrorsTotal     *prometheus.CounterVec
	DisplayFailures prometheus.Counter
	IgnoredTriggers prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catgallery_requests_total",
			Help: "Total fetch attempts by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catgallery_request_duration_seconds",
			Help:    "Latency of the image-search request.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catgallery_errors_total",
			Help: "Total number of failures by kind.",
		},
		[]string{"kind"},
	)
	displayFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catgallery_display_failures_total",
			Help: "Images the display surface failed to render.",
		},
	)
	ignored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catgallery_ignored_triggers_total",
			Help: "Triggers dropped because an attempt was already loading.",
		},
	)

	registry.MustRegister(requests, requestDuration, errorsTotal, displayFailures, ignored)

	return &Metrics{
		Registry:        registry,
		RequestsTotal:   requests,
		RequestDuration: requestDuration,
		ErrorsTotal:     errorsTotal,
		DisplayFailures: displayFailures,
		IgnoredTriggers: ignored,
	}
}

// IncRequest increments the attempts counter for an outcome label.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records a search request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a kind label.
func (m *Metrics) IncError(kind string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(kind).Inc()
}

// IncDisplayFailure increments the display failures counter.
func (m *Metrics) IncDisplayFailure() {
	if m == nil {
		return
	}
	m.DisplayFailures.Inc()
}

// IncIgnored increments the ignored triggers counter.
func (m *Metrics) IncIgnored() {
	if m == nil {
		return
	}
	m.IgnoredTriggers.Inc()
}
