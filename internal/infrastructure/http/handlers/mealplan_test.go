package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"github.com/nutriplan/v1/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error) {
	args := m.Called(ctx, userID, p)
	dp, _ := args.Get(0).(*plan.DayPlan)
	return dp, args.Error(1)
}

func (m *mockService) RegeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error) {
	args := m.Called(ctx, userID, p)
	dp, _ := args.Get(0).(*plan.DayPlan)
	return dp, args.Error(1)
}

func (m *mockService) RegenerateMeal(ctx context.Context, userID string, p profile.Profile, current *plan.DayPlan, slot plan.SlotType) (*plan.DayPlan, error) {
	args := m.Called(ctx, userID, p, current, slot)
	dp, _ := args.Get(0).(*plan.DayPlan)
	return dp, args.Error(1)
}

const body = `{
	"user_id": "u1",
	"profile": {"age": 30, "height": 170, "weight": 70, "gender": "male",
		"activity_level": "moderate", "goal": "maintenance",
		"food_restrictions": ["nuts"]}
}`

func newRouter(t *testing.T, svc *mockService) http.Handler {
	h := NewMealPlanHandlers(svc, "1.0.0", zaptest.NewLogger(t))
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Route("/api/v1", h.Routes)
	return r
}

func post(t *testing.T, h http.Handler, path, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorResponse {
	t.Helper()
	var resp errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGeneratePlan(t *testing.T) {
	svc := &mockService{}
	dp := &plan.DayPlan{ID: "plan-1", SlotTable: plan.TableFiveMeals}
	svc.On("GeneratePlan", mock.Anything, "u1", mock.MatchedBy(func(p profile.Profile) bool {
		return p.Age == 30 && p.Goal == profile.GoalMaintenance && len(p.Restrictions) == 1
	})).Return(dp, nil).Once()

	rec := post(t, newRouter(t, svc), "/api/v1/plans", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool         `json:"success"`
		Data    plan.DayPlan `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "plan-1", resp.Data.ID)
	svc.AssertExpectations(t)
}

func TestRegeneratePlan(t *testing.T) {
	svc := &mockService{}
	svc.On("RegeneratePlan", mock.Anything, "u1", mock.Anything).Return(&plan.DayPlan{ID: "plan-2"}, nil).Once()

	rec := post(t, newRouter(t, svc), "/api/v1/plans/regenerate", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRegenerateMealPassesSlotAndPlan(t *testing.T) {
	svc := &mockService{}
	svc.On("RegenerateMeal", mock.Anything, "u1", mock.Anything,
		mock.MatchedBy(func(dp *plan.DayPlan) bool { return dp != nil && dp.ID == "old" }),
		plan.SlotLunch,
	).Return(&plan.DayPlan{ID: "new"}, nil).Once()

	payload := `{"user_id":"u1","profile":{"age":30},"plan":{"id":"old","meals":[]}}`
	rec := post(t, newRouter(t, svc), "/api/v1/plans/meals/lunch/regenerate", payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
	}{
		{"InvalidProfile", errors.NewInvalidProfileError(profile.ErrInvalidAge), http.StatusBadRequest, errors.CodeInvalidProfile},
		{"SlotNotFound", errors.NewSlotNotFoundError("brunch"), http.StatusNotFound, errors.CodeSlotNotFound},
		{"GenerationFailed", errors.NewGenerationFailedError("u1", context.Canceled), http.StatusInternalServerError, errors.CodeGenerationFailed},
		{"PlainError", assert.AnError, http.StatusInternalServerError, errors.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("GeneratePlan", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := post(t, newRouter(t, svc), "/api/v1/plans", body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	svc := &mockService{}
	router := newRouter(t, svc)

	rec := post(t, router, "/api/v1/plans", `{"user_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeBadRequest, decodeError(t, rec).Error.Code)

	rec = post(t, router, "/api/v1/plans", `{"profile":{"age":30}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeValidationFailed, decodeError(t, rec).Error.Code)

	svc.AssertNotCalled(t, "GeneratePlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestHealthCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(t, &mockService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
}
