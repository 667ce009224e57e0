package mealplan

import (
	"context"
	"fmt"
	"time"

	"github.com/nutriplan/v1/internal/application/nutrition"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"github.com/nutriplan/v1/internal/ports/inbound"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"github.com/nutriplan/v1/pkg/errors"
	"go.uber.org/zap"
)

// Plan sources reported to metrics and logs
const (
	SourceCache = "cache"
	SourceFresh = "fresh"
)

// Service implements the meal plan use cases
type Service struct {
	generator *Generator
	cache     *PlanCache
	table     plan.SlotTable
	metrics   outbound.Metrics
	logger    *zap.Logger
}

// NewService creates a new meal plan service
func NewService(
	generator *Generator,
	cache *PlanCache,
	table plan.SlotTable,
	metrics outbound.Metrics,
	logger *zap.Logger,
) inbound.MealPlanService {
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &Service{
		generator: generator,
		cache:     cache,
		table:     table,
		metrics:   metrics,
		logger:    logger.Named("mealplan-service"),
	}
}

// GeneratePlan returns the cached plan for this profile or a new one
func (s *Service) GeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error) {
	start := time.Now()

	targets, err := nutrition.Targets(p)
	if err != nil {
		return nil, errors.NewInvalidProfileError(err)
	}

	if cached, ok := s.cache.Get(ctx, userID, p); ok {
		s.observe(userID, cached, SourceCache, start)
		return cached, nil
	}

	return s.generate(ctx, userID, p, targets, start)
}

// RegeneratePlan ignores any cached plan and overwrites it
func (s *Service) RegeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error) {
	start := time.Now()

	targets, err := nutrition.Targets(p)
	if err != nil {
		return nil, errors.NewInvalidProfileError(err)
	}

	return s.generate(ctx, userID, p, targets, start)
}

// RegenerateMeal rebuilds one slot of current, or of the cached plan
// when current is nil
func (s *Service) RegenerateMeal(ctx context.Context, userID string, p profile.Profile, current *plan.DayPlan, slot plan.SlotType) (*plan.DayPlan, error) {
	start := time.Now()

	if err := p.Validate(); err != nil {
		return nil, errors.NewInvalidProfileError(err)
	}
	if !slot.Valid() {
		return nil, errors.NewSlotNotFoundError(string(slot))
	}

	if current == nil {
		cached, ok := s.cache.Get(ctx, userID, p)
		if !ok {
			return nil, errors.NewAppError(errors.CodeNotFound, "Meal plan not found",
				"Generate a plan before regenerating a meal").WithMetadata("user_id", userID)
		}
		current = cached
	} else if fp := p.Fingerprint(); current.Fingerprint != fp {
		// The result is cached under fp, so a plan built from other
		// targets would be served for this profile.
		return nil, errors.NewInvalidProfileError(
			fmt.Errorf("%w: plan %s", plan.ErrFingerprintMismatch, current.ID))
	}
	if _, ok := current.Meal(slot); !ok {
		return nil, errors.NewSlotNotFoundError(string(slot))
	}

	s.logger.Info("Regenerating meal",
		zap.String("user_id", userID),
		zap.String("plan_id", current.ID),
		zap.String("slot", string(slot)),
	)

	updated, err := s.generator.RegenerateSlot(ctx, current, p, slot)
	if err != nil {
		return nil, errors.NewGenerationFailedError(userID, err).WithMetadata("slot", string(slot))
	}

	s.store(ctx, userID, p, updated)
	s.observe(userID, updated, SourceFresh, start)
	return updated, nil
}

func (s *Service) generate(ctx context.Context, userID string, p profile.Profile, targets plan.Targets, start time.Time) (*plan.DayPlan, error) {
	dp, err := s.generator.Generate(ctx, targets, p, s.table)
	if err != nil {
		s.logger.Error("Meal plan generation failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, errors.NewGenerationFailedError(userID, err)
	}

	s.store(ctx, userID, p, dp)
	s.observe(userID, dp, SourceFresh, start)
	return dp, nil
}

// store writes dp unless the request was cancelled. Write failures are
// logged because the plan is still valid for the caller.
func (s *Service) store(ctx context.Context, userID string, p profile.Profile, dp *plan.DayPlan) {
	if ctx.Err() != nil {
		s.logger.Debug("Request cancelled, plan not cached", zap.String("user_id", userID))
		return
	}
	if err := s.cache.Put(ctx, userID, p, dp, 0); err != nil {
		s.logger.Warn("Failed to cache meal plan",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *Service) observe(userID string, dp *plan.DayPlan, source string, start time.Time) {
	d := time.Since(start)
	s.metrics.PlanGenerated(source, d)
	s.logger.Info("Meal plan ready",
		zap.String("user_id", userID),
		zap.String("fingerprint", dp.Fingerprint),
		zap.String("source", source),
		zap.Duration("duration", d),
	)
}
