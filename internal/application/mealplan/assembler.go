package mealplan

import (
	"context"
	"strings"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/ports/outbound"
	apperrors "github.com/nutriplan/v1/pkg/errors"
	"go.uber.org/zap"
)

const (
	// MinFoodsPerMeal is topped up from the fallback pool
	MinFoodsPerMeal = 2
	// maxAttempts per category: literal term, generic term, fallback pool
	maxAttempts = 3

	defaultSearchLimit = 20
)

// MealRequest is the input for one slot
type MealRequest struct {
	Slot   plan.MealSlot
	Target plan.Macros
	Filter Filter
	// Avoid lists food names to skip when choosing, used on regeneration
	Avoid []string
}

// Assembler fills one meal slot category by category. It holds no
// per-meal state and is safe for concurrent use.
type Assembler struct {
	catalog     outbound.FoodCatalog
	selector    *Selector
	templates   Templates
	fallback    []FallbackFood
	searchLimit int
	metrics     outbound.Metrics
	logger      *zap.Logger
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithSelector replaces the deterministic selector.
func WithSelector(s *Selector) AssemblerOption {
	return func(a *Assembler) { a.selector = s }
}

// WithTemplates replaces the default meal templates.
func WithTemplates(t Templates) AssemblerOption {
	return func(a *Assembler) { a.templates = t }
}

// WithFallbackPool replaces the default staple foods.
func WithFallbackPool(pool []FallbackFood) AssemblerOption {
	return func(a *Assembler) { a.fallback = pool }
}

// WithSearchLimit sets the result count requested per search.
func WithSearchLimit(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.searchLimit = n
		}
	}
}

// WithMetrics records fallback usage.
func WithMetrics(m outbound.Metrics) AssemblerOption {
	return func(a *Assembler) {
		if m != nil {
			a.metrics = m
		}
	}
}

// NewAssembler creates a meal assembler
func NewAssembler(catalog outbound.FoodCatalog, logger *zap.Logger, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		catalog:     catalog,
		selector:    NewSelector(),
		templates:   DefaultTemplates(),
		fallback:    DefaultFallbackPool(),
		searchLimit: defaultSearchLimit,
		metrics:     outbound.NopMetrics{},
		logger:      logger.Named("meal-assembler"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// mealState is the local accumulator of one assembly
type mealState struct {
	req       MealRequest
	entries   []plan.FoodEntry
	used      map[string]bool
	avoid     map[string]bool
	remaining plan.Macros
	fallbacks int
}

func newMealState(req MealRequest) *mealState {
	st := &mealState{
		req:       req,
		used:      make(map[string]bool),
		avoid:     make(map[string]bool, len(req.Avoid)),
		remaining: req.Target,
	}
	for _, n := range req.Avoid {
		st.avoid[strings.ToLower(strings.TrimSpace(n))] = true
	}
	return st
}

// Assemble builds the meal for req.Slot. Categories are processed in
// template order because each sub-target depends on what earlier
// categories consumed. Catalog failures degrade to fallback foods; only
// context cancellation is returned as an error.
func (a *Assembler) Assemble(ctx context.Context, req MealRequest) (*plan.Meal, error) {
	return a.assemble(ctx, req, false)
}

// FallbackMeal builds a meal from the fallback pool alone, without
// touching the catalog.
func (a *Assembler) FallbackMeal(req MealRequest) *plan.Meal {
	meal, _ := a.assemble(context.Background(), req, true)
	return meal
}

func (a *Assembler) assemble(ctx context.Context, req MealRequest, offline bool) (*plan.Meal, error) {
	st := newMealState(req)
	categories := a.templates[req.Slot.Type]

	for i, raw := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cat := req.Filter.Adjust(raw)
		candidates, err := a.candidates(ctx, st, cat, offline)
		if err != nil {
			return nil, err
		}

		need := Need{
			NeedsProtein:   st.remaining.Protein > 0,
			NeedsCarbs:     st.remaining.Carbs > 0,
			NeedsFat:       st.remaining.Fat > 0,
			TargetCalories: st.remaining.Calories / float64(len(categories)-i),
		}
		pick, ok := a.selector.Select(candidates, need)
		if !ok {
			a.logger.Debug("Category left unfilled",
				zap.String("slot", string(req.Slot.Type)),
				zap.String("term", cat.Term),
				zap.Error(apperrors.NewNoCandidatesFoundError(string(req.Slot.Type), cat.Term)),
			)
			continue
		}

		st.add(plan.NewFoodEntry(pick, Quantity(pick, need.TargetCalories)))
		if pick.Source == food.SourceFallback {
			st.fallbacks++
		}
	}

	a.topUp(st)

	var warnings []string
	if len(st.entries) == 0 {
		w := apperrors.NewNoCandidatesFoundError(string(req.Slot.Type), "any category")
		warnings = append(warnings, w.Details)
		a.logger.Warn("Meal has no foods", zap.String("slot", string(req.Slot.Type)))
	}
	if st.fallbacks > 0 {
		a.metrics.FallbackFoods(string(req.Slot.Type), st.fallbacks)
	}

	return plan.NewMeal(req.Slot, req.Target, st.entries, warnings), nil
}

// candidates runs the three attempts for a category and returns the first
// non-empty filtered set.
func (a *Assembler) candidates(ctx context.Context, st *mealState, cat Category, offline bool) ([]food.Record, error) {
	terms := []string{cat.Term}
	if g := cat.GenericTerm(); g != "" {
		terms = append(terms, g)
	}

	attempts := 0
	if !offline {
		for _, term := range terms {
			if attempts == maxAttempts-1 {
				break
			}
			attempts++

			found, err := a.catalog.Search(ctx, term, a.searchLimit)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				a.logger.Warn("Catalog search failed, treating as empty",
					zap.String("slot", string(st.req.Slot.Type)),
					zap.String("term", term),
					zap.Error(err),
				)
				continue
			}
			if usable := st.usable(found); len(usable) > 0 {
				return usable, nil
			}
		}
	}

	return st.usable(a.fallbackFor(cat.Group)), nil
}

// fallbackFor returns the staples of a group, or the first staple when
// none matches so that a category never stalls.
func (a *Assembler) fallbackFor(g Group) []food.Record {
	var out []food.Record
	for _, f := range a.fallback {
		if f.Matches(g) {
			out = append(out, f.Record)
		}
	}
	if len(out) == 0 && len(a.fallback) > 0 {
		out = append(out, a.fallback[0].Record)
	}
	return out
}

// topUp injects unused, allowed fallback foods at a fixed portion until
// the meal reaches the minimum size or the pool is exhausted.
func (a *Assembler) topUp(st *mealState) {
	for _, f := range a.fallback {
		if len(st.entries) >= MinFoodsPerMeal {
			return
		}
		rec := f.Record
		if st.used[rec.NameKey()] || !st.req.Filter.Allows(rec) {
			continue
		}
		st.add(plan.NewFoodEntry(rec, FallbackPortionGrams))
		st.fallbacks++
		a.logger.Debug("Injected fallback food",
			zap.String("slot", string(st.req.Slot.Type)),
			zap.String("food", rec.Name),
		)
	}
}

// usable filters candidates and drops foods already in the meal or
// explicitly avoided.
func (st *mealState) usable(foods []food.Record) []food.Record {
	allowed := st.req.Filter.Apply(foods)
	out := allowed[:0]
	for _, rec := range allowed {
		key := rec.NameKey()
		if st.used[key] || st.avoid[key] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (st *mealState) add(e plan.FoodEntry) {
	st.entries = append(st.entries, e)
	st.used[e.Food.NameKey()] = true
	st.remaining = st.remaining.Sub(e.Macros)
}
