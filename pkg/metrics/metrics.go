package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "projection"

// Metrics holds the service's Prometheus collectors behind a private
// registry so tests can create isolated instances.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	databaseOperations *prometheus.CounterVec
	databaseDuration   *prometheus.HistogramVec

	eventsPublished *prometheus.CounterVec

	projectionsComputed *prometheus.CounterVec
	projectionDuration  prometheus.Histogram
	orderLinesImported  prometheus.Counter
	stockRowsImported   prometheus.Counter
	routesActive        prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered.
func New(serviceName string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path"}),
		httpRequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being served",
			ConstLabels: constLabels,
		}),
		databaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "database_operations_total",
			Help:        "Total number of database operations",
			ConstLabels: constLabels,
		}, []string{"collection", "operation", "status"}),
		databaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "database_operation_duration_seconds",
			Help:        "Database operation latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"collection", "operation"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "events_published_total",
			Help:        "Total number of integration events published",
			ConstLabels: constLabels,
		}, []string{"topic", "event_type", "status"}),
		projectionsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "projections_computed_total",
			Help:        "Projection runs, split by cache hit or full recompute",
			ConstLabels: constLabels,
		}, []string{"source"}),
		projectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "projection_duration_seconds",
			Help:        "Full projection recompute latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		orderLinesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "order_lines_imported_total",
			Help:        "Total order lines accepted by imports",
			ConstLabels: constLabels,
		}),
		stockRowsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "stock_rows_imported_total",
			Help:        "Total stock rows accepted by imports",
			ConstLabels: constLabels,
		}),
		routesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "routes_active",
			Help:        "Routes currently in the registry",
			ConstLabels: constLabels,
		}),
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.httpRequestsInFlight,
		m.databaseOperations,
		m.databaseDuration,
		m.eventsPublished,
		m.projectionsComputed,
		m.projectionDuration,
		m.orderLinesImported,
		m.stockRowsImported,
		m.routesActive,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight tracks request start.
func (m *Metrics) IncrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Inc() }

// DecrementHTTPRequestsInFlight tracks request end.
func (m *Metrics) DecrementHTTPRequestsInFlight() { m.httpRequestsInFlight.Dec() }

// RecordDatabaseOperation records one repository call.
func (m *Metrics) RecordDatabaseOperation(collection, operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.databaseOperations.WithLabelValues(collection, operation, status).Inc()
	m.databaseDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())
}

// RecordEventPublished records one integration event publish attempt.
func (m *Metrics) RecordEventPublished(topic, eventType string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.eventsPublished.WithLabelValues(topic, eventType, status).Inc()
}

// RecordProjectionComputed records a projection served from cache or rebuilt.
func (m *Metrics) RecordProjectionComputed(cached bool, duration time.Duration) {
	source := "recompute"
	if cached {
		source = "cache"
	} else {
		m.projectionDuration.Observe(duration.Seconds())
	}
	m.projectionsComputed.WithLabelValues(source).Inc()
}

// RecordOrderLinesImported adds to the import counter.
func (m *Metrics) RecordOrderLinesImported(count int) {
	m.orderLinesImported.Add(float64(count))
}

// RecordStockRowsImported adds to the import counter.
func (m *Metrics) RecordStockRowsImported(count int) {
	m.stockRowsImported.Add(float64(count))
}

// SetRoutesActive updates the registry size gauge.
func (m *Metrics) SetRoutesActive(count int) {
	m.routesActive.Set(float64(count))
}
