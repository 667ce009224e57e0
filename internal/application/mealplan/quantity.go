package mealplan

import (
	"math"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/domain/plan"
)

// FallbackPortionGrams is the fixed portion used when topping up a meal
const FallbackPortionGrams = 50.0

// Quantity returns the grams of rec that deliver targetCalories, never
// less than the minimum portion.
func Quantity(rec food.Record, targetCalories float64) float64 {
	kcal := rec.Calories
	if kcal <= 0 {
		kcal = 1
	}
	grams := math.Round(targetCalories * 100 / kcal)
	return math.Max(plan.MinPortionGrams, grams)
}
