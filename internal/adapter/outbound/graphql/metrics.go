package graphql

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexwatever/wept/internal/domain/apperror"
)

// Metrics holds the Prometheus metrics for backend calls.
// A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SessionsIssued  prometheus.Counter
}

// NewMetrics creates and registers the backend metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wept",
				Subsystem: "graphql",
				Name:      "requests_total",
				Help:      "Total number of GraphQL operations sent to the backend",
			},
			[]string{"operation", "type", "result"}, // type=query/mutation, result=ok/<error kind>
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wept",
				Subsystem: "graphql",
				Name:      "request_duration_seconds",
				Help:      "GraphQL round-trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "type"},
		),
		SessionsIssued: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "wept",
				Subsystem: "graphql",
				Name:      "session_tokens_received_total",
				Help:      "Mutation responses that carried a session header",
			},
		),
	}
}

func (m *Metrics) observe(op, opType string, err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = apperror.Classify(err).String()
	}
	m.RequestsTotal.WithLabelValues(op, opType, result).Inc()
	m.RequestDuration.WithLabelValues(op, opType).Observe(d.Seconds())
}

func (m *Metrics) sessionIssued() {
	if m == nil {
		return
	}
	m.SessionsIssued.Inc()
}
