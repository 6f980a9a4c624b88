package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors the service exports.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DeliveriesCreated   prometheus.Counter
	DeliveriesCompleted prometheus.Counter
	TransitionsTotal    *prometheus.CounterVec
	TransitionsRejected *prometheus.CounterVec
	VerificationsTotal  *prometheus.CounterVec
	ActiveDeliveries    prometheus.Gauge
	BusyRobots          prometheus.Gauge

	registry *prometheus.Registry
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "robocourier_http_requests_total",
			Help: "HTTP requests processed, by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "robocourier_http_request_duration_seconds",
			Help:    "HTTP request latency, by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		DeliveriesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "robocourier_deliveries_created_total",
			Help: "Deliveries accepted into the queue.",
		}),
		DeliveriesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "robocourier_deliveries_completed_total",
			Help: "Deliveries that reached the terminal state.",
		}),
		TransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "robocourier_transitions_total",
			Help: "Applied delivery state transitions, by target state.",
		}, []string{"state"}),
		TransitionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "robocourier_transitions_rejected_total",
			Help: "Rejected delivery state transitions, by reason.",
		}, []string{"reason"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "robocourier_verifications_total",
			Help: "Challenge token verification attempts, by outcome.",
		}, []string{"outcome"}),
		ActiveDeliveries: factory.NewGauge(prometheus.GaugeOpts{
			Name: "robocourier_active_deliveries",
			Help: "Deliveries currently tracked, terminal states included.",
		}),
		BusyRobots: factory.NewGauge(prometheus.GaugeOpts{
			Name: "robocourier_busy_robots",
			Help: "Robots currently assigned to a delivery.",
		}),
		registry: registry,
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
