// Package static is an in-process curated food catalogue used by the CLI,
// local development and as a last provider when the network is down.
package static

import (
	"context"
	"strings"

	"github.com/nutriplan/v1/internal/domain/food"
)

const (
	// Name identifies the provider in logs and metrics
	Name = "static"
	// Rating ranks the curated list below remote databases
	Rating = 3
)

type entry struct {
	name, category            string
	kcal, protein, carbs, fat float64
	fiber                     float64
	allergens                 []string
}

// foods are generic per-100g reference values
var foods = []entry{
	{"Whole-wheat bread", "bread", 247, 13, 41, 3.4, 7, []string{"gluten"}},
	{"Rye bread", "bread", 259, 8.5, 48, 3.3, 5.8, []string{"gluten"}},
	{"Rolled oats", "cereals", 389, 16.9, 66, 6.9, 10.6, []string{"gluten"}},
	{"Brown rice", "rice", 112, 2.3, 24, 0.8, 1.8, nil},
	{"Quinoa", "cereals", 120, 4.4, 21, 1.9, 2.8, nil},
	{"Sweet potato", "potato vegetables", 86, 1.6, 20, 0.1, 3, nil},
	{"Boiled potato", "potato vegetables", 87, 1.9, 20, 0.1, 1.8, nil},
	{"Whole-wheat pasta", "pasta", 124, 5.3, 27, 0.5, 4.5, []string{"gluten"}},
	{"Eggs", "eggs", 155, 13, 1.1, 11, 0, []string{"eggs"}},
	{"Chicken breast", "poultry chicken", 165, 31, 0, 3.6, 0, nil},
	{"Turkey breast", "poultry", 135, 30, 0, 1, 0, nil},
	{"Lean beef", "meat", 176, 26, 0, 8, 0, nil},
	{"Salmon fillet", "fish", 208, 20, 0, 13, 0, []string{"fish"}},
	{"Tuna in water", "fish", 116, 26, 0, 1, 0, []string{"fish"}},
	{"Cod fillet", "fish", 82, 18, 0, 0.7, 0, []string{"fish"}},
	{"Greek yogurt", "dairy yogurt", 59, 10, 3.6, 0.4, 0, []string{"milk"}},
	{"Skim milk", "dairy milk", 34, 3.4, 5, 0.1, 0, []string{"milk"}},
	{"Cottage cheese", "dairy cheese", 98, 11, 3.4, 4.3, 0, []string{"milk"}},
	{"Soy drink", "plant drinks soy", 33, 3.3, 1.8, 1.8, 0.6, []string{"soy"}},
	{"Tofu", "legumes soy", 76, 8, 1.9, 4.8, 0.3, []string{"soy"}},
	{"Lentils", "legumes", 116, 9, 20, 0.4, 7.9, nil},
	{"Chickpeas", "legumes", 164, 8.9, 27, 2.6, 7.6, nil},
	{"Black beans", "legumes beans", 132, 8.9, 24, 0.5, 8.7, nil},
	{"Mixed vegetables", "vegetables", 65, 2.9, 13, 0.3, 4, nil},
	{"Broccoli", "vegetables", 34, 2.8, 7, 0.4, 2.6, nil},
	{"Cauliflower", "vegetables", 25, 1.9, 5, 0.3, 2, nil},
	{"Spinach", "vegetables", 23, 2.9, 3.6, 0.4, 2.2, nil},
	{"Green salad", "vegetables salad", 15, 1.4, 2.9, 0.2, 1.3, nil},
	{"Apple", "fruit", 52, 0.3, 14, 0.2, 2.4, nil},
	{"Banana", "fruit", 89, 1.1, 23, 0.3, 2.6, nil},
	{"Orange", "fruit", 47, 0.9, 12, 0.1, 2.4, nil},
	{"Blueberries", "fruit berries", 57, 0.7, 14, 0.3, 2.4, nil},
	{"Strawberries", "fruit berries", 32, 0.7, 7.7, 0.3, 2, nil},
	{"Almonds", "nuts", 579, 21, 22, 50, 12.5, []string{"nuts"}},
	{"Walnuts", "nuts", 654, 15, 14, 65, 6.7, []string{"nuts"}},
	{"Mixed nuts", "nuts", 607, 20, 21, 54, 7, []string{"nuts"}},
	{"Peanut butter", "spreads", 588, 25, 20, 50, 6, []string{"peanuts"}},
	{"Avocado", "fruit", 160, 2, 8.5, 14.7, 6.7, nil},
	{"Olive oil", "oils", 884, 0, 0, 100, 0, nil},
}

// Provider serves foods from the curated list
type Provider struct {
	foods []food.Draft
}

// New creates the provider
func New() *Provider {
	drafts := make([]food.Draft, 0, len(foods))
	for _, f := range foods {
		drafts = append(drafts, food.Draft{
			ID:        "static-" + strings.ReplaceAll(strings.ToLower(f.name), " ", "-"),
			Source:    food.SourceStatic,
			Name:      f.name,
			Calories:  food.Float(f.kcal),
			Protein:   food.Float(f.protein),
			Carbs:     food.Float(f.carbs),
			Fat:       food.Float(f.fat),
			Fiber:     food.Float(f.fiber),
			Category:  f.category,
			Allergens: f.allergens,
		})
	}
	return &Provider{foods: drafts}
}

// Name implements outbound.FoodProvider
func (p *Provider) Name() string { return Name }

// Rating implements outbound.FoodProvider
func (p *Provider) Rating() int { return Rating }

// Search matches term as a case-insensitive substring of name or category
func (p *Provider) Search(ctx context.Context, term string, limit int) ([]food.Draft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, nil
	}

	var out []food.Draft
	for _, d := range p.foods {
		if strings.Contains(strings.ToLower(d.Name), needle) || strings.Contains(strings.ToLower(d.Category), needle) {
			out = append(out, d)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
