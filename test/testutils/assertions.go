// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"math"
	"strings"
	"testing"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// PlanAssertions provides plan-specific assertion methods
type PlanAssertions struct {
	t *testing.T
}

// NewPlanAssertions creates a new plan assertions helper
func NewPlanAssertions(t *testing.T) *PlanAssertions {
	return &PlanAssertions{t: t}
}

// WellFormed checks the per-entry and per-meal invariants every plan holds
func (pa *PlanAssertions) WellFormed(dp *plan.DayPlan) {
	pa.t.Helper()
	require.NotNil(pa.t, dp, "Plan should not be nil")
	assert.NotEmpty(pa.t, dp.ID)

	var total plan.Macros
	for _, m := range dp.Meals {
		require.NotNil(pa.t, m, "Meal should not be nil")
		assert.GreaterOrEqual(pa.t, len(m.Foods), 2, "Meal %s should have at least two foods", m.Type)
		for _, e := range m.Foods {
			pa.EntryConsistent(e)
		}
		total = total.Add(m.Totals)
	}
	assert.InDelta(pa.t, total.Calories, dp.Totals.Calories, 0.01)
}

// EntryConsistent checks portion floor and per-100g scaling
func (pa *PlanAssertions) EntryConsistent(e plan.FoodEntry) {
	pa.t.Helper()
	f := e.QuantityGrams / 100
	assert.GreaterOrEqual(pa.t, e.QuantityGrams, plan.MinPortionGrams, "%s portion", e.Food.Name)
	assert.InDelta(pa.t, math.Round(e.Food.Calories*f), e.Calories, 0.01, "%s calories", e.Food.Name)
	assert.InDelta(pa.t, e.Food.Protein*f, e.Protein, 0.051, "%s protein", e.Food.Name)
	assert.InDelta(pa.t, e.Food.Carbs*f, e.Carbs, 0.051, "%s carbs", e.Food.Name)
	assert.InDelta(pa.t, e.Food.Fat*f, e.Fat, 0.051, "%s fat", e.Food.Name)
}

// NoFoodContains asserts no entry name contains term, case-insensitive
func (pa *PlanAssertions) NoFoodContains(dp *plan.DayPlan, term string) {
	pa.t.Helper()
	term = strings.ToLower(term)
	for _, m := range dp.Meals {
		for _, e := range m.Foods {
			assert.NotContains(pa.t, strings.ToLower(e.Food.Name), term, "meal %s", m.Type)
		}
	}
}

// FoodNames lists entry names of a meal in order
func FoodNames(m *plan.Meal) []string {
	names := make([]string, 0, len(m.Foods))
	for _, e := range m.Foods {
		names = append(names, e.Food.Name)
	}
	return names
}
