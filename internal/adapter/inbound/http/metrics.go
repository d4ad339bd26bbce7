package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alexwatever/wept/internal/domain/apperror"
)

// Metrics holds the Prometheus metrics for the storefront API.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CartActions     *prometheus.CounterVec
	CartItems       prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wept",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests served",
			},
			[]string{"route", "method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wept",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		CartActions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wept",
				Subsystem: "api",
				Name:      "cart_actions_total",
				Help:      "Cart actions by action and result kind",
			},
			[]string{"action", "result"}, // result=ok or an error kind
		),
		CartItems: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wept",
				Subsystem: "api",
				Name:      "cart_items",
				Help:      "Total item quantity in the cart after the last action",
			},
		),
	}
}

// cartAction records the outcome of a cart action. Safe on a nil receiver.
func (m *Metrics) cartAction(action string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = apperror.Classify(err).String()
	}
	m.CartActions.WithLabelValues(action, result).Inc()
}

// cartItems records the cart quantity. Safe on a nil receiver.
func (m *Metrics) cartItems(n int) {
	if m == nil {
		return
	}
	m.CartItems.Set(float64(n))
}
