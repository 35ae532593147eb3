package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the openbrew service.
type Metrics struct {
	config MetricsConfig

	// Request metrics
	requestsTotal   prometheus.Counter
	requestsByRoute *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	// Menu metrics
	menuItems    prometheus.Gauge
	ordersPlaced prometheus.Counter
	shipFailures prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of inbound HTTP requests",
			},
		),
		requestsByRoute: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_by_route_total",
				Help:      "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP request handling in seconds",
				Buckets:   buckets,
			},
			[]string{"method", "route"},
		),

		menuItems: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "menu_items",
				Help:      "Current number of items on the menu",
			},
		),
		ordersPlaced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orders_placed_total",
				Help:      "Total number of coffee orders placed",
			},
		),
		shipFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_ship_failures_total",
				Help:      "Total number of failed log shipping attempts",
			},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestsByRoute,
		m.requestDuration,
		m.menuItems,
		m.ordersPlaced,
		m.shipFailures,
	)

	return m, nil
}

// RecordRequest increments the process-wide inbound request counter.
// Called once per request by the pre-hook.
func (m *Metrics) RecordRequest() {
	if m.requestsTotal == nil {
		return
	}
	m.requestsTotal.Inc()
}

// RecordRoute records the completion of a request against its route.
func (m *Metrics) RecordRoute(method, route string, status int, duration time.Duration) {
	if m.requestsByRoute == nil {
		return
	}
	m.requestsByRoute.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// SetMenuItems sets the current menu size gauge.
func (m *Metrics) SetMenuItems(count float64) {
	if m.menuItems == nil {
		return
	}
	m.menuItems.Set(count)
}

// RecordOrder increments the placed orders counter.
func (m *Metrics) RecordOrder() {
	if m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// RecordShipFailure increments the log shipping failure counter.
func (m *Metrics) RecordShipFailure() {
	if m.shipFailures == nil {
		return
	}
	m.shipFailures.Inc()
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
