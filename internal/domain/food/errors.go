package food

import "errors"

// Ingestion errors
var (
	ErrNameTooShort         = errors.New("food name must be at least 3 characters")
	ErrMissingNutrient      = errors.New("food is missing a required nutrient")
	ErrNegativeNutrient     = errors.New("food nutrient cannot be negative")
	ErrCaloriesOutOfRange   = errors.New("food calories outside 0-900 kcal/100g")
	ErrInconsistentCalories = errors.New("food calories inconsistent with macronutrients")
)
