package mealplan

import (
	"strings"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/domain/plan"
)

// Group is a food group used to match fallback foods to a category
type Group string

const (
	GroupStarch    Group = "starch"
	GroupProtein   Group = "protein"
	GroupVegetable Group = "vegetable"
	GroupFruit     Group = "fruit"
	GroupDairy     Group = "dairy"
	GroupLegume    Group = "legume"
	GroupFat       Group = "fat"
)

// Category is one search term of a meal template
type Category struct {
	Term    string
	Generic string
	Group   Group
}

// GenericTerm returns the broader search term, falling back to the last
// word of a multi-word term. An empty result means there is nothing more
// generic to try.
func (c Category) GenericTerm() string {
	g := strings.TrimSpace(c.Generic)
	if g == "" {
		words := strings.FieldsFunc(c.Term, func(r rune) bool { return r == ' ' || r == '-' })
		if len(words) > 1 {
			g = words[len(words)-1]
		}
	}
	if strings.EqualFold(g, c.Term) {
		return ""
	}
	return g
}

// Templates maps a slot type to its ordered categories
type Templates map[plan.SlotType][]Category

// DefaultTemplates returns the standard meal templates.
func DefaultTemplates() Templates {
	return Templates{
		plan.SlotBreakfast: {
			{Term: "whole-wheat bread", Generic: "bread", Group: GroupStarch},
			{Term: "eggs", Generic: "egg", Group: GroupProtein},
			{Term: "fresh fruit", Generic: "fruit", Group: GroupFruit},
		},
		plan.SlotMorningSnack: {
			{Term: "greek yogurt", Generic: "yogurt", Group: GroupDairy},
			{Term: "mixed nuts", Generic: "nuts", Group: GroupFat},
		},
		plan.SlotLunch: {
			{Term: "brown rice", Generic: "rice", Group: GroupStarch},
			{Term: "chicken breast", Generic: "chicken", Group: GroupProtein},
			{Term: "mixed vegetables", Generic: "vegetables", Group: GroupVegetable},
			{Term: "black beans", Generic: "beans", Group: GroupLegume},
		},
		plan.SlotAfternoonSnack: {
			{Term: "fresh fruit", Generic: "fruit", Group: GroupFruit},
			{Term: "almonds", Generic: "nuts", Group: GroupFat},
		},
		plan.SlotDinner: {
			{Term: "sweet potato", Generic: "potato", Group: GroupStarch},
			{Term: "salmon fillet", Generic: "fish", Group: GroupProtein},
			{Term: "green salad", Generic: "vegetables", Group: GroupVegetable},
		},
		plan.SlotEveningSnack: {
			{Term: "skim milk", Generic: "milk", Group: GroupDairy},
			{Term: "berries", Generic: "fruit", Group: GroupFruit},
		},
	}
}

// FallbackFood is a staple used when the catalog yields nothing usable
type FallbackFood struct {
	Record food.Record
	Groups []Group
}

// Matches reports whether the fallback food covers the group.
func (f FallbackFood) Matches(g Group) bool {
	for _, fg := range f.Groups {
		if fg == g {
			return true
		}
	}
	return false
}

func staple(id, name, category string, kcal, protein, carbs, fat float64, allergens []string, groups ...Group) FallbackFood {
	return FallbackFood{
		Record: food.Record{
			ID:        "fallback-" + id,
			Source:    food.SourceFallback,
			Name:      name,
			Category:  category,
			Calories:  kcal,
			Protein:   protein,
			Carbs:     carbs,
			Fat:       fat,
			Allergens: allergens,
		},
		Groups: groups,
	}
}

// DefaultFallbackPool spans the major food groups. Order matters: the
// first food is the last resort for any category.
func DefaultFallbackPool() []FallbackFood {
	return []FallbackFood{
		staple("rice", "Cooked white rice", "cereals", 130, 2.7, 28, 0.3, nil, GroupStarch),
		staple("lentils", "Cooked lentils", "legumes", 116, 9, 20, 0.4, nil, GroupLegume, GroupProtein),
		staple("chicken", "Grilled chicken breast", "poultry", 165, 31, 0, 3.6, nil, GroupProtein),
		staple("eggs", "Boiled eggs", "eggs", 155, 13, 1.1, 11, []string{"eggs"}, GroupProtein),
		staple("broccoli", "Steamed broccoli", "vegetables", 34, 2.8, 7, 0.4, nil, GroupVegetable),
		staple("banana", "Banana", "fruits", 89, 1.1, 23, 0.3, nil, GroupFruit),
		staple("almonds", "Almonds", "nuts", 579, 21, 22, 50, []string{"nuts"}, GroupFat),
		staple("yogurt", "Plain yogurt", "dairies", 61, 3.5, 4.7, 3.3, []string{"milk"}, GroupDairy),
	}
}
