package internal

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inventory-dashboard/pkg/inventory"
)

// Metrics provides Prometheus metrics collection for HTTP requests and inventory loads
type Metrics struct {
	reqTotal   *prometheus.CounterVec
	reqLatency *prometheus.HistogramVec
	loadsTotal *prometheus.CounterVec
	devices    prometheus.Gauge
	registry   *prometheus.Registry
}

// NewMetrics creates a new Metrics instance with a private Prometheus registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	reqTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	reqLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	loadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_loads_total",
			Help: "Inventory loads by result",
		},
		[]string{"result"},
	)

	devices := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inventory_devices",
		Help: "Devices in the most recently loaded inventory",
	})

	registry.MustRegister(reqTotal, reqLatency, loadsTotal, devices)

	return &Metrics{
		reqTotal:   reqTotal,
		reqLatency: reqLatency,
		loadsTotal: loadsTotal,
		devices:    devices,
		registry:   registry,
	}
}

// ObserveLoad records the outcome of one inventory load
func (m *Metrics) ObserveLoad(inv *inventory.Inventory, err error) {
	m.loadsTotal.WithLabelValues(loadResult(err)).Inc()
	if err == nil {
		m.devices.Set(float64(inv.Len()))
	}
}

func loadResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, inventory.ErrFileNotFound):
		return "not_found"
	case errors.Is(err, inventory.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, inventory.ErrMissingColumn), errors.Is(err, inventory.ErrInvalidRow):
		return "invalid"
	default:
		return "error"
	}
}

// Middleware returns a Chi middleware that collects metrics
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response writer that captures the status code
			rw := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

			next.ServeHTTP(rw, r)

			// Use Chi's route pattern if available
			path := r.URL.Path
			if chiCtx := chi.RouteContext(r.Context()); chiCtx != nil && len(chiCtx.RoutePatterns) > 0 {
				path = chiCtx.RoutePatterns[len(chiCtx.RoutePatterns)-1]
			}

			status := http.StatusText(rw.code)
			m.reqTotal.WithLabelValues(r.Method, path, status).Inc()
			m.reqLatency.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler returns an http.Handler that serves Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the HTTP status code for metrics
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.code = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	return sr.ResponseWriter.Write(b)
}
