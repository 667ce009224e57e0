package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutriplan/v1/internal/application/mealplan"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/infrastructure/config"
	"github.com/nutriplan/v1/internal/infrastructure/monitoring"
	"github.com/nutriplan/v1/internal/infrastructure/persistence/memory"
	"github.com/nutriplan/v1/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type planResponse struct {
	Success bool          `json:"success"`
	Data    *plan.DayPlan `json:"data"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zaptest.NewLogger(t)

	cfg := &config.Config{
		App:        config.AppConfig{Name: "nutriplan", Version: "test", Environment: "test"},
		Server:     config.ServerConfig{Port: 8080, RequestTimeout: 5 * time.Second},
		Monitoring: config.MonitoringConfig{EnableMetrics: true, MetricsPath: "/metrics"},
	}
	metrics := monitoring.NewMetricsCollector(logger)

	repo := memory.NewCacheRepository()
	t.Cleanup(func() { _ = repo.Close() })

	catalog := testutils.NewFakeCatalog(testutils.SampleFoods()...)
	assembler := mealplan.NewAssembler(catalog, logger, mealplan.WithMetrics(metrics))
	svc := mealplan.NewService(
		mealplan.NewGenerator(assembler, logger),
		mealplan.NewPlanCache(repo, time.Hour, metrics, logger),
		plan.FiveMeals(),
		metrics,
		logger,
	)
	return NewServer(cfg, logger, svc, metrics, nil)
}

func doPost(t *testing.T, s *Server, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

const profileBody = `{
	"user_id": "user-42",
	"profile": {"age": 30, "height": 170, "weight": 70, "gender": "male",
		"activity_level": "moderate", "goal": "maintenance"}
}`

func TestPlanLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(t, s, "/api/v1/plans", profileBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var first planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NotNil(t, first.Data)
	assert.Len(t, first.Data.Meals, 5)
	assert.NotEmpty(t, rec.Header().Get("X-Content-Type-Options"))

	rec = doPost(t, s, "/api/v1/plans", profileBody)
	require.Equal(t, http.StatusOK, rec.Code)
	var second planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.Data.ID, second.Data.ID, "served from cache")

	rec = doPost(t, s, "/api/v1/plans/meals/lunch/regenerate", profileBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var regen planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regen))
	assert.NotEqual(t, first.Data.ID, regen.Data.ID)

	oldBreakfast, _ := first.Data.Meal(plan.SlotBreakfast)
	newBreakfast, _ := regen.Data.Meal(plan.SlotBreakfast)
	assert.Equal(t, oldBreakfast.ID, newBreakfast.ID)

	rec = doPost(t, s, "/api/v1/plans/regenerate", profileBody)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorsOverHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := doPost(t, s, "/api/v1/plans/meals/brunch/regenerate", profileBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doPost(t, s, "/api/v1/plans", `{"user_id":"u","profile":{"age":30,"height":170,"weight":70,"gender":"male","activity_level":"couch","goal":"maintenance"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PROFILE")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", bytes.NewBufferString(profileBody))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	doPost(t, s, "/api/v1/plans", profileBody)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `nutriplan_plans_total{source="fresh"} 1`)
	assert.Contains(t, rec.Body.String(), `nutriplan_plan_cache_lookups_total{result="miss"} 1`)
}
