package mealplan

import (
	"testing"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/stretchr/testify/assert"
)

func rec(name, category string, carbs float64) food.Record {
	return food.Record{Name: name, Category: category, Calories: 100, Carbs: carbs}
}

func names(foods []food.Record) []string {
	out := make([]string, 0, len(foods))
	for _, f := range foods {
		out = append(out, f.Name)
	}
	return out
}

func TestFilterFoods(t *testing.T) {
	foods := []food.Record{
		rec("Roasted peanuts", "nuts", 20),
		rec("Apple", "fruit", 14),
		rec("Greek yogurt", "dairy", 4),
		rec("White bread", "bread", 49),
		rec("Grilled chicken breast", "poultry", 0),
		rec("Eggplant", "vegetables", 6),
		rec("Boiled eggs", "eggs", 1),
		rec("Tofu", "legumes", 2),
		rec("Salmon fillet", "fish", 0),
	}
	withAllergen := food.Record{Name: "Granola bar", Calories: 400, Allergens: []string{"milk", "nuts"}}
	withIngredient := food.Record{Name: "Trail mix", Calories: 450, Ingredients: []string{"Raisins", "Roasted peanuts"}}

	tests := []struct {
		name         string
		foods        []food.Record
		restrictions []string
		preferences  []string
		want         []string
	}{
		{
			name:  "NoRules_KeepsEverythingInOrder",
			foods: foods[:3],
			want:  []string{"Roasted peanuts", "Apple", "Greek yogurt"},
		},
		{
			name:         "RestrictionIsCaseInsensitiveSubstringOfName",
			foods:        foods[:3],
			restrictions: []string{"PEANUT"},
			want:         []string{"Apple", "Greek yogurt"},
		},
		{
			name:         "RestrictionMatchesAllergen",
			foods:        []food.Record{withAllergen, foods[1]},
			restrictions: []string{"nuts"},
			want:         []string{"Apple"},
		},
		{
			name:         "RestrictionMatchesIngredient",
			foods:        []food.Record{withIngredient, foods[1]},
			restrictions: []string{"peanut"},
			want:         []string{"Apple"},
		},
		{
			name:         "LactoseSynonymExcludesDairy",
			foods:        foods[:4],
			restrictions: []string{"Lactose intolerant"},
			want:         []string{"Roasted peanuts", "Apple", "White bread"},
		},
		{
			name:         "GlutenSynonymExcludesBread",
			foods:        foods[:4],
			restrictions: []string{"gluten"},
			want:         []string{"Roasted peanuts", "Apple", "Greek yogurt"},
		},
		{
			name:        "VeganStripsAnimalProducts",
			foods:       foods,
			preferences: []string{"vegan"},
			want:        []string{"Roasted peanuts", "Apple", "White bread", "Eggplant", "Tofu"},
		},
		{
			name:        "LowCarbDropsAbove15g",
			foods:       foods[:5],
			preferences: []string{"low-carb"},
			want:        []string{"Apple", "Greek yogurt", "Grilled chicken breast"},
		},
		{
			name:        "PreferencesCombine",
			foods:       foods,
			preferences: []string{"Vegan", "low-carb"},
			want:        []string{"Apple", "Eggplant", "Tofu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterFoods(tt.foods, tt.restrictions, tt.preferences)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterRestrictionWordsSelectSynonyms(t *testing.T) {
	foods := []food.Record{
		rec("Almonds", "nuts", 22),
		rec("Roasted peanuts", "legumes", 20),
		rec("Apple", "fruit", 14),
	}

	tests := []struct {
		restriction string
		want        []string
	}{
		{"peanut", []string{"Almonds", "Apple"}},
		{"Peanuts", []string{"Almonds", "Apple"}},
		{"coconut", []string{"Almonds", "Roasted peanuts", "Apple"}},
		{"nutmeg", []string{"Almonds", "Roasted peanuts", "Apple"}},
		{"tree nuts", []string{"Roasted peanuts", "Apple"}},
		{"tree-nut", []string{"Roasted peanuts", "Apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.restriction, func(t *testing.T) {
			got := FilterFoods(foods, []string{tt.restriction}, nil)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestVeganKeepsPlantBasedDairyAlternatives(t *testing.T) {
	foods := []food.Record{
		rec("Almond milk", "beverages", 1),
		rec("Oat drink", "Dairy substitutes", 7),
		rec("Peanut butter", "spreads", 20),
		rec("Coconut yogurt", "desserts", 8),
		rec("Skim milk", "dairy", 5),
		rec("Cheddar cheese", "cheese", 1),
		rec("Cream cheese", "spreads", 4),
	}

	got := FilterFoods(foods, nil, []string{"vegan"})

	assert.Equal(t, []string{"Almond milk", "Oat drink", "Peanut butter", "Coconut yogurt"}, names(got))
}

func TestFilterAdjust(t *testing.T) {
	templates := DefaultTemplates()
	breakfast := templates["breakfast"]
	lunch := templates["lunch"]
	dinner := templates["dinner"]

	vegan := NewFilter(nil, []string{"vegan"})
	assert.Equal(t, "whole-wheat bread", vegan.Adjust(breakfast[0]).Term)
	assert.Equal(t, "tofu", vegan.Adjust(breakfast[1]).Term)
	assert.Equal(t, "lentils", vegan.Adjust(lunch[1]).Term)
	assert.Equal(t, "chickpeas", vegan.Adjust(dinner[1]).Term)
	assert.Equal(t, "soy drink", vegan.Adjust(templates["evening_snack"][0]).Term)

	lowCarb := NewFilter(nil, []string{"keto"})
	assert.True(t, lowCarb.LowCarb())
	adjusted := lowCarb.Adjust(lunch[0])
	assert.Equal(t, "cauliflower", adjusted.Term)
	assert.Equal(t, GroupVegetable, adjusted.Group)
	assert.Equal(t, "cauliflower", lowCarb.Adjust(dinner[0]).Term)
	assert.Equal(t, "chicken breast", lowCarb.Adjust(lunch[1]).Term)

	both := NewFilter(nil, []string{"vegan", "low-carb"})
	assert.Equal(t, "cauliflower", both.Adjust(breakfast[0]).Term)
	assert.Equal(t, "lentils", both.Adjust(lunch[1]).Term)

	var none Filter
	assert.Equal(t, lunch[1], none.Adjust(lunch[1]))
}

func TestCategoryGenericTerm(t *testing.T) {
	assert.Equal(t, "bread", Category{Term: "whole-wheat bread", Generic: "bread"}.GenericTerm())
	assert.Equal(t, "bread", Category{Term: "whole-wheat bread"}.GenericTerm())
	assert.Equal(t, "", Category{Term: "almonds"}.GenericTerm())
	assert.Equal(t, "", Category{Term: "fruit", Generic: "Fruit"}.GenericTerm())
}
