package plan

import (
	"testing"
	"time"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInTablesSumToOne(t *testing.T) {
	for _, table := range []SlotTable{FiveMeals(), SixMeals()} {
		assert.InDelta(t, 1.0, table.TotalPercentage(), 1e-6, table.Name())
	}
	assert.Len(t, FiveMeals().Slots(), 5)
	assert.Len(t, SixMeals().Slots(), 6)
}

func TestNewSlotTableRejectsBadTables(t *testing.T) {
	tests := []struct {
		name  string
		slots []MealSlot
		want  error
	}{
		{"Empty", nil, ErrEmptySlotTable},
		{"SumsTo95", []MealSlot{
			{Type: SlotBreakfast, CaloriePercentage: 0.25},
			{Type: SlotLunch, CaloriePercentage: 0.35},
			{Type: SlotDinner, CaloriePercentage: 0.30},
			{Type: SlotEveningSnack, CaloriePercentage: 0.05},
		}, ErrPercentageSum},
		{"Unknown", []MealSlot{{Type: "brunch", CaloriePercentage: 1}}, ErrUnknownSlot},
		{"Duplicate", []MealSlot{
			{Type: SlotLunch, CaloriePercentage: 0.5},
			{Type: SlotLunch, CaloriePercentage: 0.5},
		}, ErrDuplicateSlot},
		{"OutOfOrder", []MealSlot{
			{Type: SlotDinner, CaloriePercentage: 0.5},
			{Type: SlotLunch, CaloriePercentage: 0.5},
		}, ErrSlotOrder},
		{"ZeroShare", []MealSlot{
			{Type: SlotLunch, CaloriePercentage: 1},
			{Type: SlotDinner, CaloriePercentage: 0},
		}, ErrInvalidPercentage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSlotTable("custom", tt.slots)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTableByName(t *testing.T) {
	table, err := TableByName("")
	require.NoError(t, err)
	assert.Equal(t, TableFiveMeals, table.Name())

	_, err = TableByName("nine_meals")
	assert.ErrorIs(t, err, ErrUnknownSlotTable)
}

func TestNewFoodEntryScalesPer100g(t *testing.T) {
	rec := food.Record{Name: "Rice", Calories: 130, Protein: 2.7, Carbs: 28, Fat: 0.3}
	e := NewFoodEntry(rec, 154)

	assert.Equal(t, 154.0, e.QuantityGrams)
	assert.Equal(t, 200.0, e.Calories)
	assert.Equal(t, 4.2, e.Protein)
	assert.Equal(t, 43.1, e.Carbs)
	assert.Equal(t, 0.5, e.Fat)
}

func TestWithMealSharesOtherMeals(t *testing.T) {
	table := FiveMeals()
	var meals []*Meal
	for _, s := range table.Slots() {
		meals = append(meals, NewMeal(s, Macros{}, nil, nil))
	}
	original := NewDayPlan("fp", table.Name(), Targets{Calories: 2000}, meals, time.Now())

	lunch, _ := table.Slot(SlotLunch)
	replacement := NewMeal(lunch, Macros{}, []FoodEntry{NewFoodEntry(food.Record{Name: "Soup", Calories: 50}, 300)}, nil)

	updated, err := original.WithMeal(replacement, time.Now())
	require.NoError(t, err)

	assert.NotSame(t, original, updated)
	for i, m := range updated.Meals {
		if m.Type == SlotLunch {
			assert.Same(t, replacement, m)
			assert.NotSame(t, original.Meals[i], m)
			continue
		}
		assert.Same(t, original.Meals[i], m)
	}
	assert.Equal(t, 150.0, updated.Totals.Calories)
	assert.Zero(t, original.Totals.Calories)

	evening, _ := SixMeals().Slot(SlotEveningSnack)
	_, err = original.WithMeal(NewMeal(evening, Macros{}, nil, nil), time.Now())
	assert.ErrorIs(t, err, ErrSlotNotInPlan)
}
