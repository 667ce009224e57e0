package plan

import (
	"fmt"
	"math"
)

// SlotType identifies a meal slot
type SlotType string

const (
	SlotBreakfast      SlotType = "breakfast"
	SlotMorningSnack   SlotType = "morning_snack"
	SlotLunch          SlotType = "lunch"
	SlotAfternoonSnack SlotType = "afternoon_snack"
	SlotDinner         SlotType = "dinner"
	SlotEveningSnack   SlotType = "evening_snack"
)

// slotOrder is the canonical ordering of the day
var slotOrder = []SlotType{
	SlotBreakfast,
	SlotMorningSnack,
	SlotLunch,
	SlotAfternoonSnack,
	SlotDinner,
	SlotEveningSnack,
}

// Valid reports whether t is a known slot type.
func (t SlotType) Valid() bool {
	for _, s := range slotOrder {
		if s == t {
			return true
		}
	}
	return false
}

// MealSlot is configuration, not runtime state.
type MealSlot struct {
	Type              SlotType `json:"type"`
	DisplayName       string   `json:"display_name"`
	TimeOfDay         string   `json:"time_of_day"`
	CaloriePercentage float64  `json:"calorie_percentage"`
}

// SlotTable is an ordered set of slots whose calorie percentages sum to 1.
type SlotTable struct {
	name  string
	slots []MealSlot
}

// sumTolerance bounds floating error in the percentage sum
const sumTolerance = 1e-6

// NewSlotTable validates and returns a slot table. Slots must be known,
// unique, in canonical day order, positive and sum to 1.
func NewSlotTable(name string, slots []MealSlot) (SlotTable, error) {
	if len(slots) == 0 {
		return SlotTable{}, ErrEmptySlotTable
	}

	seen := make(map[SlotType]bool, len(slots))
	last := -1
	var sum float64
	for _, s := range slots {
		if !s.Type.Valid() {
			return SlotTable{}, fmt.Errorf("%w: %q", ErrUnknownSlot, s.Type)
		}
		if seen[s.Type] {
			return SlotTable{}, fmt.Errorf("%w: %q", ErrDuplicateSlot, s.Type)
		}
		seen[s.Type] = true
		idx := orderIndex(s.Type)
		if idx < last {
			return SlotTable{}, fmt.Errorf("%w: %q", ErrSlotOrder, s.Type)
		}
		last = idx
		if s.CaloriePercentage <= 0 {
			return SlotTable{}, fmt.Errorf("%w: %q", ErrInvalidPercentage, s.Type)
		}
		sum += s.CaloriePercentage
	}
	if math.Abs(sum-1) > sumTolerance {
		return SlotTable{}, fmt.Errorf("%w: got %.6f", ErrPercentageSum, sum)
	}

	cp := make([]MealSlot, len(slots))
	copy(cp, slots)
	return SlotTable{name: name, slots: cp}, nil
}

func orderIndex(t SlotType) int {
	for i, s := range slotOrder {
		if s == t {
			return i
		}
	}
	return -1
}

// Name returns the table name.
func (t SlotTable) Name() string { return t.name }

// Slots returns a copy of the ordered slots.
func (t SlotTable) Slots() []MealSlot {
	cp := make([]MealSlot, len(t.slots))
	copy(cp, t.slots)
	return cp
}

// Slot looks up a slot by type.
func (t SlotTable) Slot(st SlotType) (MealSlot, bool) {
	for _, s := range t.slots {
		if s.Type == st {
			return s, true
		}
	}
	return MealSlot{}, false
}

// TotalPercentage sums the calorie percentages.
func (t SlotTable) TotalPercentage() float64 {
	var sum float64
	for _, s := range t.slots {
		sum += s.CaloriePercentage
	}
	return sum
}

// Table names
const (
	TableFiveMeals = "five_meals"
	TableSixMeals  = "six_meals"
)

// FiveMeals is the default table: breakfast 25, snack 10, lunch 30,
// snack 10, dinner 25.
func FiveMeals() SlotTable {
	return mustTable(TableFiveMeals, []MealSlot{
		{Type: SlotBreakfast, DisplayName: "Breakfast", TimeOfDay: "07:00", CaloriePercentage: 0.25},
		{Type: SlotMorningSnack, DisplayName: "Morning snack", TimeOfDay: "10:00", CaloriePercentage: 0.10},
		{Type: SlotLunch, DisplayName: "Lunch", TimeOfDay: "12:30", CaloriePercentage: 0.30},
		{Type: SlotAfternoonSnack, DisplayName: "Afternoon snack", TimeOfDay: "16:00", CaloriePercentage: 0.10},
		{Type: SlotDinner, DisplayName: "Dinner", TimeOfDay: "19:30", CaloriePercentage: 0.25},
	})
}

// SixMeals adds an evening snack: 20/10/30/10/25/5.
func SixMeals() SlotTable {
	return mustTable(TableSixMeals, []MealSlot{
		{Type: SlotBreakfast, DisplayName: "Breakfast", TimeOfDay: "07:00", CaloriePercentage: 0.20},
		{Type: SlotMorningSnack, DisplayName: "Morning snack", TimeOfDay: "10:00", CaloriePercentage: 0.10},
		{Type: SlotLunch, DisplayName: "Lunch", TimeOfDay: "12:30", CaloriePercentage: 0.30},
		{Type: SlotAfternoonSnack, DisplayName: "Afternoon snack", TimeOfDay: "16:00", CaloriePercentage: 0.10},
		{Type: SlotDinner, DisplayName: "Dinner", TimeOfDay: "19:30", CaloriePercentage: 0.25},
		{Type: SlotEveningSnack, DisplayName: "Evening snack", TimeOfDay: "22:00", CaloriePercentage: 0.05},
	})
}

// TableByName resolves a configured table name.
func TableByName(name string) (SlotTable, error) {
	switch name {
	case "", TableFiveMeals:
		return FiveMeals(), nil
	case TableSixMeals:
		return SixMeals(), nil
	default:
		return SlotTable{}, fmt.Errorf("%w: %q", ErrUnknownSlotTable, name)
	}
}

func mustTable(name string, slots []MealSlot) SlotTable {
	t, err := NewSlotTable(name, slots)
	if err != nil {
		panic(err)
	}
	return t
}
