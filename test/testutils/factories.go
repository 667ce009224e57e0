// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"math"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/domain/profile"
)

// FoodFactory provides methods to create test food records
type FoodFactory struct {
	faker *gofakeit.Faker
}

// NewFoodFactory creates a new food factory with seeded faker
func NewFoodFactory(seed int64) *FoodFactory {
	return &FoodFactory{
		faker: gofakeit.New(seed),
	}
}

// Record returns a calorie-consistent record with random macros
func (f *FoodFactory) Record(name, category string) food.Record {
	protein := round1(f.faker.Float64Range(0, 30))
	carbs := round1(f.faker.Float64Range(0, 60))
	fat := round1(f.faker.Float64Range(0, 25))

	return food.Record{
		ID:        f.faker.UUID(),
		Source:    food.SourceStatic,
		Name:      name,
		Category:  category,
		Protein:   protein,
		Carbs:     carbs,
		Fat:       fat,
		Calories:  math.Round(4*protein + 4*carbs + 9*fat),
		Brand:     f.faker.Company(),
		Allergens: []string{},
	}
}

// Records returns n records with distinct generated names
func (f *FoodFactory) Records(n int, category string) []food.Record {
	out := make([]food.Record, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %s %d", f.faker.Adjective(), category, i+1)
		out = append(out, f.Record(name, category))
	}
	return out
}

// Draft returns a raw provider record for the given nutrients
func (f *FoodFactory) Draft(name string, kcal, protein, carbs, fat float64) food.Draft {
	return food.Draft{
		ID:       f.faker.UUID(),
		Source:   food.SourceStatic,
		Name:     name,
		Calories: food.Float(kcal),
		Protein:  food.Float(protein),
		Carbs:    food.Float(carbs),
		Fat:      food.Float(fat),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func sample(name, category string, kcal, protein, carbs, fat float64, allergens ...string) food.Record {
	if allergens == nil {
		allergens = []string{}
	}
	return food.Record{
		ID:        "sample-" + name,
		Source:    food.SourceStatic,
		Name:      name,
		Category:  category,
		Calories:  kcal,
		Protein:   protein,
		Carbs:     carbs,
		Fat:       fat,
		Allergens: allergens,
	}
}

// SampleFoods is a catalog large enough to fill every default meal
// template, including the vegan and low-carb substitutes
func SampleFoods() []food.Record {
	return []food.Record{
		sample("Whole-wheat bread", "bread", 247, 13, 41, 3.4, "gluten"),
		sample("White bread", "bread", 265, 9, 49, 3.2, "gluten"),
		sample("Eggs", "eggs", 155, 13, 1.1, 11, "eggs"),
		sample("Apple", "fruit", 52, 0.3, 14, 0.2),
		sample("Orange", "fruit", 47, 0.9, 12, 0.1),
		sample("Blueberries", "fruit", 57, 0.7, 14, 0.3),
		sample("Greek yogurt", "dairy", 59, 10, 3.6, 0.4, "milk"),
		sample("Mixed nuts", "nuts", 607, 20, 21, 54, "nuts"),
		sample("Almonds", "nuts", 579, 21, 22, 50, "nuts"),
		sample("Brown rice", "rice", 112, 2.3, 24, 0.8),
		sample("Chicken breast", "poultry", 165, 31, 0, 3.6),
		sample("Mixed vegetables", "vegetables", 65, 2.9, 13, 0.3),
		sample("Chicken and vegetable soup", "soups", 36, 2.5, 4, 1),
		sample("Black beans", "legumes", 132, 8.9, 24, 0.5),
		sample("Sweet potato", "vegetables", 86, 1.6, 20, 0.1),
		sample("Salmon fillet", "fish", 208, 20, 0, 13, "fish"),
		sample("Green salad", "vegetables", 15, 1.4, 2.9, 0.2),
		sample("Skim milk", "dairy", 34, 3.4, 5, 0.1, "milk"),
		sample("Tofu", "legumes", 76, 8, 1.9, 4.8, "soy"),
		sample("Lentils", "legumes", 116, 9, 20, 0.4),
		sample("Chickpeas", "legumes", 164, 8.9, 27, 2.6),
		sample("Soy drink", "plant drinks", 33, 3.3, 1.8, 1.8, "soy"),
		sample("Cauliflower", "vegetables", 25, 1.9, 5, 0.3),
	}
}

// ProfileBuilder provides a fluent interface for building test profiles
type ProfileBuilder struct {
	p profile.Profile
}

// NewProfileBuilder starts from a 30 year old, 170 cm, 70 kg moderately
// active man maintaining weight
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{p: profile.Profile{
		DisplayName:   "Test User",
		Age:           30,
		Height:        170,
		Weight:        70,
		Gender:        profile.GenderMale,
		ActivityLevel: profile.ActivityModerate,
		Goal:          profile.GoalMaintenance,
		Preferences:   []string{},
		Restrictions:  []string{},
	}}
}

// WithWeight sets the weight in kg
func (b *ProfileBuilder) WithWeight(kg float64) *ProfileBuilder {
	b.p.Weight = kg
	return b
}

// WithGoal sets the goal
func (b *ProfileBuilder) WithGoal(g profile.Goal) *ProfileBuilder {
	b.p.Goal = g
	return b
}

// WithActivity sets the activity level
func (b *ProfileBuilder) WithActivity(a profile.ActivityLevel) *ProfileBuilder {
	b.p.ActivityLevel = a
	return b
}

// WithPreferences sets the food preferences
func (b *ProfileBuilder) WithPreferences(prefs ...string) *ProfileBuilder {
	b.p.Preferences = prefs
	return b
}

// WithRestrictions sets the food restrictions
func (b *ProfileBuilder) WithRestrictions(r ...string) *ProfileBuilder {
	b.p.Restrictions = r
	return b
}

// WithDisplayName sets the display name
func (b *ProfileBuilder) WithDisplayName(name string) *ProfileBuilder {
	b.p.DisplayName = name
	return b
}

// Build returns a copy of the profile
func (b *ProfileBuilder) Build() profile.Profile {
	p := b.p
	p.Preferences = append([]string{}, b.p.Preferences...)
	p.Restrictions = append([]string{}, b.p.Restrictions...)
	return p
}
