// Package food defines nutrition-database entries and the ingestion gate
// every provider result passes before it reaches meal planning.
package food

import (
	"fmt"
	"math"
	"strings"
)

// Ingestion bounds
const (
	MinNameLength = 3
	// MaxCaloriesPer100g bounds raw and unprocessed foods; pure fat is ~900.
	MaxCaloriesPer100g = 900.0
	// CalorieTolerance is the accepted relative gap between stated
	// calories and 4/4/9 macro calories.
	CalorieTolerance = 0.5
)

// Source identifies the provider a record came from
type Source string

const (
	SourceOpenFoodFacts Source = "openfoodfacts"
	SourceUSDA          Source = "usda"
	SourceStatic        Source = "static"
	SourceFallback      Source = "fallback"
)

// Record is a validated nutrition entry. All nutrient values are per 100 g.
// Records are values and are never mutated after FromDraft returns them.
type Record struct {
	ID       string   `json:"id"`
	Source   Source   `json:"source"`
	Name     string   `json:"name"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`

	Brand       string   `json:"brand,omitempty"`
	Category    string   `json:"category,omitempty"`
	Allergens   []string `json:"allergens"`
	Ingredients []string `json:"ingredients"`
	Image       string   `json:"image,omitempty"`
}

// Draft is a provider record after field mapping but before validation.
// Nil nutrient pointers mean the provider did not report a usable number.
type Draft struct {
	ID       string
	Source   Source
	Name     string
	Calories *float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
	Fiber    *float64
	Sugar    *float64
	Sodium   *float64

	Brand       string
	Category    string
	Allergens   []string
	Ingredients []string
	Image       string
}

// FromDraft applies the ingestion gate and returns a Record.
func FromDraft(d Draft) (Record, error) {
	name := strings.TrimSpace(d.Name)
	if len([]rune(name)) < MinNameLength {
		return Record{}, fmt.Errorf("%w: %q", ErrNameTooShort, d.Name)
	}

	required := []struct {
		label string
		value *float64
	}{
		{"calories", d.Calories},
		{"protein", d.Protein},
		{"carbs", d.Carbs},
		{"fat", d.Fat},
	}
	for _, r := range required {
		if r.value == nil || math.IsNaN(*r.value) || math.IsInf(*r.value, 0) {
			return Record{}, fmt.Errorf("%w: %s", ErrMissingNutrient, r.label)
		}
		if *r.value < 0 {
			return Record{}, fmt.Errorf("%w: %s", ErrNegativeNutrient, r.label)
		}
	}

	rec := Record{
		ID:          d.ID,
		Source:      d.Source,
		Name:        name,
		Calories:    *d.Calories,
		Protein:     *d.Protein,
		Carbs:       *d.Carbs,
		Fat:         *d.Fat,
		Fiber:       d.Fiber,
		Sugar:       d.Sugar,
		Sodium:      d.Sodium,
		Brand:       strings.TrimSpace(d.Brand),
		Category:    strings.TrimSpace(d.Category),
		Allergens:   normalizeTags(d.Allergens),
		Ingredients: trimAll(d.Ingredients),
		Image:       d.Image,
	}

	if rec.Calories > MaxCaloriesPer100g {
		return Record{}, fmt.Errorf("%w: %.1f kcal", ErrCaloriesOutOfRange, rec.Calories)
	}
	if !rec.IsCalorieConsistent() {
		return Record{}, fmt.Errorf("%w: stated %.1f kcal, macros %.1f kcal",
			ErrInconsistentCalories, rec.Calories, rec.MacroCalories())
	}

	return rec, nil
}

// MacroCalories returns the energy implied by the macronutrients.
func (r Record) MacroCalories() float64 {
	return r.Protein*4 + r.Carbs*4 + r.Fat*9
}

// IsCalorieConsistent reports whether stated and macro calories agree
// within CalorieTolerance.
func (r Record) IsCalorieConsistent() bool {
	return math.Abs(r.MacroCalories()-r.Calories) <= CalorieTolerance*r.Calories
}

// NameKey is the deduplication key.
func (r Record) NameKey() string {
	return strings.ToLower(strings.TrimSpace(r.Name))
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		// "en:milk" style taxonomy tags
		if i := strings.Index(t, ":"); i >= 0 {
			t = t[i+1:]
		}
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func trimAll(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Float returns a pointer to v. Handy for building drafts.
func Float(v float64) *float64 {
	return &v
}
