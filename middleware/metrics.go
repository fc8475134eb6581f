package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics регистрирует базовые HTTP-метрики:
//   - http_request_duration_seconds{method,route,status}: histogram
//   - http_requests_inflight: gauge
//   - http_request_errors_total{method,route,status}: counter (4xx/5xx)
type Metrics struct {
	reqDuration *prometheus.HistogramVec
	reqInflight prometheus.Gauge
	reqErrors   *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. Tests pass a fresh registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		reqInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "Number of HTTP requests currently in flight.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Total number of HTTP requests answered with a 4xx or 5xx status.",
		}, []string{"method", "route", "status"}),
		gatherer: reg,
	}
	reg.MustRegister(m.reqDuration, m.reqInflight, m.reqErrors)
	return m
}

func (m *Metrics) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.reqInflight.Inc()
		defer m.reqInflight.Dec()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		status := strconv.Itoa(code)
		route := routePattern(r)

		m.reqDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		if code >= 400 {
			m.reqErrors.WithLabelValues(r.Method, route, status).Inc()
		}
	})
}

// Endpoint serves the registry in the Prometheus exposition format.
func (m *Metrics) Endpoint() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
