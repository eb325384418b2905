package gopaginator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names the controller entry point that started a fetch.
type Operation string

const (
	OperationLoad     Operation = "load"
	OperationLoadMore Operation = "load_more"
)

// Outcome classifies how a fetch concluded.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeError     Outcome = "error"
	OutcomeCancelled Outcome = "cancelled"
)

// Rejection reasons reported through MetricsCollector.IncRejected.
const (
	RejectAlreadyLoading = "already_loading"
	RejectEndReached     = "end_reached"
)

// MetricsCollector receives controller events. Implementations must be safe
// for concurrent use.
type MetricsCollector interface {
	// ObserveFetch is called once per concluded fetch.
	ObserveFetch(op Operation, outcome Outcome, items int, duration time.Duration)
	// IncRejected is called when LoadMore is refused without fetching.
	IncRejected(op Operation, reason string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveFetch(Operation, Outcome, int, time.Duration) {}
func (nopMetrics) IncRejected(Operation, string)                       {}

// PrometheusMetrics implements MetricsCollector with Prometheus collectors.
//
// Exposed metrics:
//   - <ns>_fetches_total{operation, outcome} (Counter)
//   - <ns>_fetch_duration_seconds{operation} (Histogram)
//   - <ns>_items_total{operation} (Counter)
//   - <ns>_rejected_total{operation, reason} (Counter)
type PrometheusMetrics struct {
	fetches  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	items    *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors on reg. A nil reg falls back
// to prometheus.DefaultRegisterer. Registering twice with the same namespace
// on the same registry panics, as promauto does.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "pagination"
	}

	factory := promauto.With(reg)

	return &PrometheusMetrics{
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Total number of concluded page fetches",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Duration of page fetches",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Total number of items returned by successful fetches",
			},
			[]string{"operation"},
		),
		rejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rejected_total",
				Help:      "Total number of load requests refused without fetching",
			},
			[]string{"operation", "reason"},
		),
	}
}

// ObserveFetch - implements MetricsCollector.
func (m *PrometheusMetrics) ObserveFetch(op Operation, outcome Outcome, items int, duration time.Duration) {
	m.fetches.WithLabelValues(string(op), string(outcome)).Inc()
	m.duration.WithLabelValues(string(op)).Observe(duration.Seconds())
	if outcome == OutcomeSuccess {
		m.items.WithLabelValues(string(op)).Add(float64(items))
	}
}

// IncRejected - implements MetricsCollector.
func (m *PrometheusMetrics) IncRejected(op Operation, reason string) {
	m.rejected.WithLabelValues(string(op), reason).Inc()
}

var (
	_ MetricsCollector = nopMetrics{}
	_ MetricsCollector = (*PrometheusMetrics)(nil)
)
