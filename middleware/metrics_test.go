package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findFamily(families []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func TestMetricsRecordsRoutePatterns(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics("test", registry)

	r := chi.NewRouter()
	r.Use(metrics.Handler)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	for _, path := range []string{"/items/1", "/items/2", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := registry.Gather()
	require.NoError(t, err)

	duration := findFamily(families, "test_http_request_duration_seconds")
	require.NotNil(t, duration)
	require.Len(t, duration.Metric, 2)
	for _, m := range duration.Metric {
		if labelValue(m, "route") == "/items/{id}" {
			assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
		}
	}

	errorsTotal := findFamily(families, "test_http_request_errors_total")
	require.NotNil(t, errorsTotal)
	require.Len(t, errorsTotal.Metric, 1)
	assert.Equal(t, "/boom", labelValue(errorsTotal.Metric[0], "route"))
	assert.Equal(t, "500", labelValue(errorsTotal.Metric[0], "status"))
	assert.Equal(t, float64(1), errorsTotal.Metric[0].GetCounter().GetValue())

	inflight := findFamily(families, "test_http_requests_inflight")
	require.NotNil(t, inflight)
	assert.Equal(t, float64(0), inflight.Metric[0].GetGauge().GetValue())
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics("test", registry)
	metrics.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	metrics.Endpoint().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "test_http_request_duration_seconds"))
}
