package observability

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Storage metrics
	StorageErrorsTotal *prometheus.CounterVec

	// Database pool metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	// Billing metrics
	RemindersIssuedTotal    prometheus.Counter
	PaymentsConfirmedTotal  prometheus.Counter
	RevenueCentavosTotal    prometheus.Counter
	SweepTransitionsTotal   prometheus.Counter
	StatsCacheHitsTotal     prometheus.Counter
	StatsCacheMissesTotal   prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "renova_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "renova_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StorageErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "renova_storage_errors_total",
				Help: "Total number of storage errors by operation",
			},
			[]string{"operation"},
		),
		DBConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renova_db_connections_active",
			Help: "Number of active database connections",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "renova_db_connections_idle",
			Help: "Number of idle database connections",
		}),
		RemindersIssuedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_reminders_issued_total",
			Help: "Total number of renewal reminders issued",
		}),
		PaymentsConfirmedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_payments_confirmed_total",
			Help: "Total number of confirmed renewal payments",
		}),
		RevenueCentavosTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_revenue_centavos_total",
			Help: "Total confirmed revenue in centavos",
		}),
		SweepTransitionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_sweep_transitions_total",
			Help: "Total number of clients flipped from ativo to vencido by the sweep",
		}),
		StatsCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_stats_cache_hits_total",
			Help: "Dashboard stats served from the Redis cache",
		}),
		StatsCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "renova_stats_cache_misses_total",
			Help: "Dashboard stats computed from the database",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StorageErrorsTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.RemindersIssuedTotal,
		m.PaymentsConfirmedTotal,
		m.RevenueCentavosTotal,
		m.SweepTransitionsTotal,
		m.StatsCacheHitsTotal,
		m.StatsCacheMissesTotal,
	)

	return m
}

// Handler returns the HTTP handler exposing the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordStorageError counts a storage failure against the operation
// that hit it
func (m *Metrics) RecordStorageError(operation string) {
	m.StorageErrorsTotal.WithLabelValues(operation).Inc()
}

// ObserveDBPool sets the connection gauges from pool statistics,
// summed across every pool passed in
func (m *Metrics) ObserveDBPool(pools ...sql.DBStats) {
	var active, idle int
	for _, p := range pools {
		active += p.InUse
		idle += p.Idle
	}
	m.DBConnectionsActive.Set(float64(active))
	m.DBConnectionsIdle.Set(float64(idle))
}

// statusRecorder captures the response status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware instruments a handler with request count and duration
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		duration := time.Since(start).Seconds()
		m.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}
