package mealplan

import (
	"strings"
	"unicode"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/domain/profile"
)

// lowCarbMaxCarbs is the per-100g carbohydrate ceiling for low-carb plans
const lowCarbMaxCarbs = 15.0

// allergenSynonyms expands loosely worded restrictions. A restriction
// with a word equal to a key (or its plural) also excludes foods matching
// any of the key's terms.
var allergenSynonyms = map[string][]string{
	"lactose":   dairyTerms,
	"dairy":     dairyTerms,
	"milk":      dairyTerms,
	"gluten":    glutenTerms,
	"wheat":     glutenTerms,
	"celiac":    glutenTerms,
	"nut":       {"almond", "walnut", "cashew", "hazelnut", "pecan", "pistachio", "macadamia", "nut"},
	"peanut":    {"peanut"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "mussel", "oyster", "shellfish"},
	"egg":       {"egg", "omelette", "mayonnaise"},
	"fish":      fishTerms,
	"soy":       {"soy", "soya", "tofu", "tempeh", "edamame"},
}

var (
	dairyTerms  = []string{"milk", "cheese", "yogurt", "yoghurt", "butter", "cream", "whey", "dairy", "dairies", "lactic", "casein", "kefir"}
	glutenTerms = []string{"wheat", "bread", "pasta", "cereal", "barley", "rye", "flour", "couscous", "bagel", "cracker", "spelt", "semolina"}
	fishTerms   = []string{"fish", "salmon", "tuna", "cod", "sardine", "trout", "anchovy", "mackerel", "tilapia"}
	meatTerms   = []string{"meat", "beef", "pork", "veal", "lamb", "mutton", "chicken", "turkey", "duck", "poultry", "ham", "bacon", "sausage", "salami", "steak", "jerky"}
	seafood     = []string{"shrimp", "prawn", "crab", "lobster", "mussel", "oyster", "seafood"}
	eggTerms    = []string{"egg", "omelette"}

	animalTerms = concat(meatTerms, fishTerms, seafood, eggTerms, dairyTerms)
	fleshTerms  = concat(meatTerms, fishTerms, seafood, eggTerms)

	// plantQualifiers mark dairy words that name a plant product, as in
	// "almond milk", "peanut butter" or "dairy substitutes".
	plantQualifiers = []string{
		"almond", "cashew", "coconut", "hazelnut", "peanut", "oat",
		"soy", "soya", "hemp", "plant", "vegan", "non", "substitute", "alternative",
	}

	highCarbStaples = []string{"rice", "bread", "potato", "potatoes", "pasta", "noodle", "toast", "bagel"}
)

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Filter removes foods a user cannot or will not eat and rewrites search
// categories for diet-style preferences. The zero value allows everything.
type Filter struct {
	restrictions []string
	synonymTerms []string
	vegan        bool
	lowCarb      bool
}

// NewFilter normalizes restrictions and preferences.
func NewFilter(restrictions, preferences []string) Filter {
	var f Filter
	seen := make(map[string]bool)
	for _, r := range restrictions {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		f.restrictions = append(f.restrictions, r)
		for key, terms := range allergenSynonyms {
			if !hasAnyWord(r, []string{key}) {
				continue
			}
			for _, t := range terms {
				if !seen[t] {
					seen[t] = true
					f.synonymTerms = append(f.synonymTerms, t)
				}
			}
		}
	}
	for _, p := range preferences {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case profile.PreferenceVegan:
			f.vegan = true
		case profile.PreferenceLowCarb, "low carb", "lowcarb", "keto":
			f.lowCarb = true
		}
	}
	return f
}

// FilterForProfile builds the filter for a profile.
func FilterForProfile(p profile.Profile) Filter {
	return NewFilter(p.Restrictions, p.Preferences)
}

// FilterFoods is the order-preserving pure filter over a candidate list.
func FilterFoods(foods []food.Record, restrictions, preferences []string) []food.Record {
	return NewFilter(restrictions, preferences).Apply(foods)
}

// Apply returns the allowed foods in their original order.
func (f Filter) Apply(foods []food.Record) []food.Record {
	out := make([]food.Record, 0, len(foods))
	for _, rec := range foods {
		if f.Allows(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Allows reports whether a single food passes restrictions and preferences.
func (f Filter) Allows(rec food.Record) bool {
	name := strings.ToLower(rec.Name)

	for _, r := range f.restrictions {
		if strings.Contains(name, r) {
			return false
		}
		for _, a := range rec.Allergens {
			if strings.Contains(strings.ToLower(a), r) {
				return false
			}
		}
		for _, ing := range rec.Ingredients {
			if strings.Contains(strings.ToLower(ing), r) {
				return false
			}
		}
	}

	if len(f.synonymTerms) > 0 {
		fields := append([]string{rec.Name, rec.Category}, rec.Allergens...)
		fields = append(fields, rec.Ingredients...)
		for _, field := range fields {
			if hasAnyWord(field, f.synonymTerms) {
				return false
			}
		}
	}

	if f.vegan && IsAnimalProduct(rec) {
		return false
	}
	if f.lowCarb && rec.Carbs > lowCarbMaxCarbs {
		return false
	}
	return true
}

// Adjust rewrites a template category before it is searched.
func (f Filter) Adjust(c Category) Category {
	if f.vegan && hasAnyWord(c.Term, animalTerms) {
		switch {
		case hasAnyWord(c.Term, dairyTerms):
			c = Category{Term: "soy drink", Generic: "soy", Group: GroupProtein}
		case hasAnyWord(c.Term, fishTerms), hasAnyWord(c.Term, seafood):
			c = Category{Term: "chickpeas", Generic: "legumes", Group: GroupProtein}
		case hasAnyWord(c.Term, eggTerms):
			c = Category{Term: "tofu", Generic: "soy", Group: GroupProtein}
		default:
			c = Category{Term: "lentils", Generic: "legumes", Group: GroupProtein}
		}
	}
	if f.lowCarb && hasAnyWord(c.Term, highCarbStaples) {
		c = Category{Term: "cauliflower", Generic: "vegetables", Group: GroupVegetable}
	}
	return c
}

// Vegan reports whether the filter strips animal products.
func (f Filter) Vegan() bool { return f.vegan }

// LowCarb reports whether the filter caps carbohydrates.
func (f Filter) LowCarb() bool { return f.lowCarb }

// IsAnimalProduct matches meat, poultry, fish, seafood, egg and dairy
// words in the name or category. Dairy words qualified by a plant word in
// the same field do not count.
func IsAnimalProduct(rec food.Record) bool {
	for _, field := range []string{rec.Name, rec.Category} {
		if hasAnyWord(field, fleshTerms) {
			return true
		}
		if hasAnyWord(field, dairyTerms) && !hasAnyWord(field, plantQualifiers) {
			return true
		}
	}
	return false
}

// hasAnyWord matches whole words, allowing simple plurals, so that
// "eggplant" does not match "egg".
func hasAnyWord(text string, terms []string) bool {
	if text == "" {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		for _, t := range terms {
			if w == t || w == t+"s" || w == t+"es" {
				return true
			}
		}
	}
	return false
}
