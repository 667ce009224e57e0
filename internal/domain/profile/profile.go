// Package profile defines the user's nutritional profile
package profile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Gender selects the BMR formula branch
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ActivityLevel is ordered: sedentary < light < moderate < intense
type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "sedentary"
	ActivityLight     ActivityLevel = "light"
	ActivityModerate  ActivityLevel = "moderate"
	ActivityIntense   ActivityLevel = "intense"
)

var activityOrder = map[ActivityLevel]int{
	ActivitySedentary: 0,
	ActivityLight:     1,
	ActivityModerate:  2,
	ActivityIntense:   3,
}

// Rank returns the position of the level in the ordering, or -1.
func (a ActivityLevel) Rank() int {
	if r, ok := activityOrder[a]; ok {
		return r
	}
	return -1
}

// Goal drives the calorie adjustment
type Goal string

const (
	GoalWeightLoss  Goal = "weight-loss"
	GoalMaintenance Goal = "maintenance"
	GoalMuscleGain  Goal = "muscle-gain"
)

// Well-known preference tags
const (
	PreferenceVegan   = "vegan"
	PreferenceLowCarb = "low-carb"
)

// Profile is supplied by the caller. DisplayName is carried for the
// presentation layer only and never affects generation.
type Profile struct {
	DisplayName   string        `json:"display_name,omitempty"`
	Age           int           `json:"age" validate:"gt=0,lte=130"`
	Height        float64       `json:"height" validate:"gt=0"`
	Weight        float64       `json:"weight" validate:"gt=0"`
	Gender        Gender        `json:"gender" validate:"required,oneof=male female other"`
	ActivityLevel ActivityLevel `json:"activity_level" validate:"required,oneof=sedentary light moderate intense"`
	Goal          Goal          `json:"goal" validate:"required,oneof=weight-loss maintenance muscle-gain"`
	Preferences   []string      `json:"food_preferences"`
	Restrictions  []string      `json:"food_restrictions"`
}

var validate = validator.New()

// Validate fails fast on non-positive numbers and unknown enum values.
// Unknown enums are never defaulted.
func (p Profile) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	var first error
	for _, fe := range verrs {
		sentinel := fieldError(fe.Field())
		if first == nil {
			first = sentinel
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", first, strings.Join(msgs, "; "))
}

func fieldError(field string) error {
	switch field {
	case "Age":
		return ErrInvalidAge
	case "Height":
		return ErrInvalidHeight
	case "Weight":
		return ErrInvalidWeight
	case "Gender":
		return ErrInvalidGender
	case "ActivityLevel":
		return ErrInvalidActivityLevel
	case "Goal":
		return ErrInvalidGoal
	default:
		return ErrInvalidProfile
	}
}

// HasPreference reports whether tag is among the preferences, ignoring case.
func (p Profile) HasPreference(tag string) bool {
	for _, pref := range p.Preferences {
		if strings.EqualFold(strings.TrimSpace(pref), tag) {
			return true
		}
	}
	return false
}

// Profile errors
var (
	ErrInvalidProfile       = errors.New("invalid profile")
	ErrInvalidAge           = errors.New("age must be between 1 and 130")
	ErrInvalidHeight        = errors.New("height must be positive")
	ErrInvalidWeight        = errors.New("weight must be positive")
	ErrInvalidGender        = errors.New("gender must be male, female or other")
	ErrInvalidActivityLevel = errors.New("activity level must be sedentary, light, moderate or intense")
	ErrInvalidGoal          = errors.New("goal must be weight-loss, maintenance or muscle-gain")
)
