package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/financehub/financehub/internal/jobs"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	return rr.Body.String()
}

func TestMetricsHandlerExposesJobMetrics(t *testing.T) {
	metrics := NewMetrics()
	jobs := jobmetrics.NewMetrics(metrics.Registerer())
	require.NoError(t, jobs.Track("rates:refresh").End(nil))

	require.Contains(t, scrape(t, metrics), `financehub_jobs_total{job="rates:refresh",status="success"} 1`)
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()
	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusTeapot, rr.Code)

	body := scrape(t, metrics)
	require.Contains(t, body, `financehub_http_requests_total{code="418",route="/test"} 1`)
	require.Contains(t, body, `financehub_http_request_duration_seconds_bucket{route="/test"`)
}

func TestObserveClosure(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveClosure("s1", true, 0.004)
	metrics.ObserveClosure("s1", false, -2.5)

	body := scrape(t, metrics)
	require.Contains(t, body, `financehub_closures_total{balanced="true",store="s1"} 1`)
	require.Contains(t, body, `financehub_closures_total{balanced="false",store="s1"} 1`)
	require.Contains(t, body, `financehub_closure_discrepancy_usd_sum{store="s1"} 2.5`)

	var nilMetrics *Metrics
	nilMetrics.ObserveClosure("s1", false, 1)
}
