// Package plan defines meal slots, meals and day plans.
package plan

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nutriplan/v1/internal/domain/food"
)

// MinPortionGrams is the smallest quantity an entry may carry
const MinPortionGrams = 30.0

// Macros is a calorie/macronutrient tuple
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the component-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Sub returns the component-wise difference.
func (m Macros) Sub(o Macros) Macros {
	return Macros{
		Calories: m.Calories - o.Calories,
		Protein:  m.Protein - o.Protein,
		Carbs:    m.Carbs - o.Carbs,
		Fat:      m.Fat - o.Fat,
	}
}

// Scale returns every component multiplied by f.
func (m Macros) Scale(f float64) Macros {
	return Macros{
		Calories: m.Calories * f,
		Protein:  m.Protein * f,
		Carbs:    m.Carbs * f,
		Fat:      m.Fat * f,
	}
}

// Targets are the daily goals produced by the nutrition calculator
type Targets = Macros

// FoodEntry is one food placed into a meal. Food is an owned copy of the
// record; records never point back at their usages.
type FoodEntry struct {
	Food          food.Record `json:"food"`
	QuantityGrams float64     `json:"quantity_grams"`
	Macros
}

// NewFoodEntry scales the record's per-100g values to grams. Calories
// are rounded to whole kcal and macros to 0.1 g.
func NewFoodEntry(rec food.Record, grams float64) FoodEntry {
	f := grams / 100
	return FoodEntry{
		Food:          rec,
		QuantityGrams: grams,
		Macros: Macros{
			Calories: math.Round(rec.Calories * f),
			Protein:  round1(rec.Protein * f),
			Carbs:    round1(rec.Carbs * f),
			Fat:      round1(rec.Fat * f),
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Meal is built once by the assembler and never modified afterwards.
type Meal struct {
	ID       string      `json:"id"`
	Type     SlotType    `json:"type"`
	Name     string      `json:"name"`
	Foods    []FoodEntry `json:"foods"`
	Totals   Macros      `json:"totals"`
	Target   Macros      `json:"target"`
	Warnings []string    `json:"warnings"`
}

// NewMeal sums entries into a meal with a fresh ID.
func NewMeal(slot MealSlot, target Macros, foods []FoodEntry, warnings []string) *Meal {
	m := &Meal{
		ID:       uuid.NewString(),
		Type:     slot.Type,
		Name:     slot.DisplayName,
		Foods:    foods,
		Target:   target,
		Warnings: warnings,
	}
	for _, f := range foods {
		m.Totals = m.Totals.Add(f.Macros)
	}
	return m
}

// DayPlan is immutable once returned; regeneration builds a new value.
type DayPlan struct {
	ID          string    `json:"id"`
	Fingerprint string    `json:"fingerprint"`
	SlotTable   string    `json:"slot_table"`
	Meals       []*Meal   `json:"meals"`
	Totals      Macros    `json:"totals"`
	Targets     Targets   `json:"targets"`
	GeneratedAt time.Time `json:"generated_at"`
}

// NewDayPlan builds a plan from meals already in slot order.
func NewDayPlan(fingerprint, table string, targets Targets, meals []*Meal, at time.Time) *DayPlan {
	p := &DayPlan{
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		SlotTable:   table,
		Meals:       meals,
		Targets:     targets,
		// Round(0) drops the monotonic reading so cached copies compare equal
		GeneratedAt: at.UTC().Round(0),
	}
	for _, m := range meals {
		p.Totals = p.Totals.Add(m.Totals)
	}
	return p
}

// Meal returns the meal for a slot.
func (p *DayPlan) Meal(st SlotType) (*Meal, bool) {
	for _, m := range p.Meals {
		if m.Type == st {
			return m, true
		}
	}
	return nil, false
}

// WithMeal returns a new plan with the meal of the same slot type
// replaced. Every other meal pointer is shared with the receiver.
func (p *DayPlan) WithMeal(meal *Meal, at time.Time) (*DayPlan, error) {
	meals := make([]*Meal, len(p.Meals))
	found := false
	for i, m := range p.Meals {
		if m.Type == meal.Type {
			meals[i] = meal
			found = true
			continue
		}
		meals[i] = m
	}
	if !found {
		return nil, ErrSlotNotInPlan
	}
	return NewDayPlan(p.Fingerprint, p.SlotTable, p.Targets, meals, at), nil
}
