// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
package inbound

import (
	"context"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
)

// MealPlanService is the primary port used by the HTTP API and the CLI
type MealPlanService interface {
	// GeneratePlan returns the cached plan for the profile fingerprint or
	// generates and caches a new one.
	GeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error)
	// RegeneratePlan always generates a fresh plan and overwrites the cache.
	RegeneratePlan(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, error)
	// RegenerateMeal rebuilds one slot of an existing plan. A nil plan is
	// loaded from the cache.
	RegenerateMeal(ctx context.Context, userID string, p profile.Profile, current *plan.DayPlan, slot plan.SlotType) (*plan.DayPlan, error)
}
