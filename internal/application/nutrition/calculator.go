// Package nutrition turns a profile into daily calorie and macro targets.
package nutrition

import (
	"fmt"
	"math"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
)

var activityMultipliers = map[profile.ActivityLevel]float64{
	profile.ActivitySedentary: 1.2,
	profile.ActivityLight:     1.375,
	profile.ActivityModerate:  1.5,
	profile.ActivityIntense:   1.725,
}

var goalAdjustments = map[profile.Goal]float64{
	profile.GoalWeightLoss:  -500,
	profile.GoalMaintenance: 0,
	profile.GoalMuscleGain:  300,
}

// protein grams per kg of body weight
var proteinPerKg = map[profile.Goal]float64{
	profile.GoalWeightLoss:  2.0,
	profile.GoalMaintenance: 1.6,
	profile.GoalMuscleGain:  2.0,
}

const (
	minDailyCalories = 1200.0
	fatShare         = 0.25
)

// BMR computes the Mifflin-St Jeor basal metabolic rate. "other" uses the
// midpoint of the male and female constants.
func BMR(p profile.Profile) float64 {
	base := 10*p.Weight + 6.25*p.Height - 5*float64(p.Age)
	switch p.Gender {
	case profile.GenderMale:
		return base + 5
	case profile.GenderFemale:
		return base - 161
	default:
		return base - 78
	}
}

// TDEE returns BMR scaled by the activity multiplier.
func TDEE(p profile.Profile) (float64, error) {
	mult, ok := activityMultipliers[p.ActivityLevel]
	if !ok {
		return 0, fmt.Errorf("%w: %q", profile.ErrInvalidActivityLevel, p.ActivityLevel)
	}
	return BMR(p) * mult, nil
}

// Targets validates the profile and computes daily targets.
func Targets(p profile.Profile) (plan.Targets, error) {
	if err := p.Validate(); err != nil {
		return plan.Targets{}, err
	}

	tdee, err := TDEE(p)
	if err != nil {
		return plan.Targets{}, err
	}
	adj, ok := goalAdjustments[p.Goal]
	if !ok {
		return plan.Targets{}, fmt.Errorf("%w: %q", profile.ErrInvalidGoal, p.Goal)
	}

	calories := math.Round(math.Max(tdee+adj, minDailyCalories))
	protein := math.Round(proteinPerKg[p.Goal] * p.Weight)
	fat := math.Round(calories * fatShare / 9)
	carbs := math.Round(math.Max(calories-protein*4-fat*9, 0) / 4)

	return plan.Targets{
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
	}, nil
}
