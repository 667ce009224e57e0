// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"github.com/nutriplan/v1/internal/ports/inbound"
	"github.com/nutriplan/v1/pkg/errors"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; a full plan is a few kilobytes
const maxBodyBytes = 1 << 20

// PlanRequest is the body of every plan endpoint
type PlanRequest struct {
	UserID  string          `json:"user_id" validate:"required,max=128"`
	Profile profile.Profile `json:"profile" validate:"-"`
	// Plan is optional on meal regeneration. The cached plan is used
	// when it is absent.
	Plan *plan.DayPlan `json:"plan,omitempty" validate:"-"`
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// MealPlanHandlers handles meal plan API requests
type MealPlanHandlers struct {
	service  inbound.MealPlanService
	validate *validator.Validate
	version  string
	logger   *zap.Logger
}

// NewMealPlanHandlers creates a new handlers instance
func NewMealPlanHandlers(service inbound.MealPlanService, version string, logger *zap.Logger) *MealPlanHandlers {
	return &MealPlanHandlers{
		service:  service,
		validate: validator.New(),
		version:  version,
		logger:   logger.Named("mealplan-api"),
	}
}

// Routes mounts the plan endpoints on r
func (h *MealPlanHandlers) Routes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Post("/", h.GeneratePlan)
		r.Post("/regenerate", h.RegeneratePlan)
		r.Post("/meals/{slot}/regenerate", h.RegenerateMeal)
	})
}

// GeneratePlan handles POST /api/v1/plans
func (h *MealPlanHandlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	dp, err := h.service.GeneratePlan(r.Context(), req.UserID, req.Profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dp})
}

// RegeneratePlan handles POST /api/v1/plans/regenerate
func (h *MealPlanHandlers) RegeneratePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	dp, err := h.service.RegeneratePlan(r.Context(), req.UserID, req.Profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dp})
}

// RegenerateMeal handles POST /api/v1/plans/meals/{slot}/regenerate
func (h *MealPlanHandlers) RegenerateMeal(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	slot := plan.SlotType(chi.URLParam(r, "slot"))

	dp, err := h.service.RegenerateMeal(r.Context(), req.UserID, req.Profile, req.Plan, slot)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dp})
}

// HealthCheck handles GET /health
func (h *MealPlanHandlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   h.version,
		},
		Message: "Service is healthy",
	})
}

func (h *MealPlanHandlers) decode(w http.ResponseWriter, r *http.Request) (*PlanRequest, bool) {
	var req PlanRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeError(w, r, errors.NewBadRequestError("Request body must be a JSON plan request").WithCause(err))
		return nil, false
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, errors.NewAppError(errors.CodeValidationFailed, "Invalid request", err.Error()))
		return nil, false
	}
	return &req, true
}

func (h *MealPlanHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "Failed to process meal plan request")

	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("Request rejected",
			zap.String("path", r.URL.Path),
			zap.String("code", string(appErr.Code)),
		)
	}

	h.writeJSON(w, status, errors.ToErrorResponse(appErr, chimiddleware.GetReqID(r.Context())))
}

// writeJSON writes a JSON response
func (h *MealPlanHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}
