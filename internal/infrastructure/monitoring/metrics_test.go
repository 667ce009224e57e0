package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMetricsCollectorPlannerMetrics(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	m.PlanGenerated("fresh", 120*time.Millisecond)
	m.PlanGenerated("cache", time.Millisecond)
	m.PlanGenerated("cache", time.Millisecond)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	m.FallbackFoods("lunch", 3)
	m.ProviderRequest("usda", nil, 50*time.Millisecond)
	m.ProviderRequest("usda", errors.New("timeout"), 3*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.plansTotal.WithLabelValues("fresh")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.plansTotal.WithLabelValues("cache")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fallbackFoods.WithLabelValues("lunch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerRequests.WithLabelValues("usda", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerRequests.WithLabelValues("usda", "error")))
}

func TestMetricsCollectorCollectorsAreIndependent(t *testing.T) {
	// Private registries allow several collectors in one process
	a := NewMetricsCollector(zaptest.NewLogger(t))
	b := NewMetricsCollector(zaptest.NewLogger(t))
	a.CacheLookup(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.cacheLookups.WithLabelValues("hit")))
}

func TestHTTPMiddlewareAndHandler(t *testing.T) {
	m := NewMetricsCollector(zaptest.NewLogger(t))

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/plans/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/plans/{id}", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "nutriplan_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
