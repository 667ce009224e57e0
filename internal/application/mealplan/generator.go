// Package mealplan generates daily meal plans from nutritional targets
package mealplan

import (
	"context"
	"fmt"
	"time"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Generator assembles every slot of a day concurrently and joins the
// results in slot order.
type Generator struct {
	assembler *Assembler
	logger    *zap.Logger
	now       func() time.Time
}

// NewGenerator creates a day plan generator
func NewGenerator(assembler *Assembler, logger *zap.Logger) *Generator {
	return &Generator{
		assembler: assembler,
		logger:    logger.Named("mealplan-generator"),
		now:       time.Now,
	}
}

// SlotTargets splits daily targets by the slot's calorie share. Protein,
// carbs and fat use the same share as calories.
func SlotTargets(targets plan.Targets, slot plan.MealSlot) plan.Macros {
	return targets.Scale(slot.CaloriePercentage)
}

// Generate builds a plan for every slot of table. A slot whose assembly
// fails for any reason other than cancellation gets a fallback-only meal.
func (g *Generator) Generate(ctx context.Context, targets plan.Targets, p profile.Profile, table plan.SlotTable) (*plan.DayPlan, error) {
	slots := table.Slots()
	filter := FilterForProfile(p)
	meals := make([]*plan.Meal, len(slots))

	var eg errgroup.Group
	for i, slot := range slots {
		i, slot := i, slot
		eg.Go(func() error {
			req := MealRequest{
				Slot:   slot,
				Target: SlotTargets(targets, slot),
				Filter: filter,
			}
			meal, err := g.assemble(ctx, req)
			if err != nil {
				return err
			}
			meals[i] = meal
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return plan.NewDayPlan(p.Fingerprint(), table.Name(), targets, meals, g.now()), nil
}

// RegenerateSlot rebuilds one meal of current and returns a new plan that
// shares every other meal with current. Foods of the replaced meal are
// avoided so the new meal differs when the catalog allows it.
func (g *Generator) RegenerateSlot(ctx context.Context, current *plan.DayPlan, p profile.Profile, st plan.SlotType) (*plan.DayPlan, error) {
	old, ok := current.Meal(st)
	if !ok {
		return nil, fmt.Errorf("%w: %q", plan.ErrSlotNotInPlan, st)
	}

	slot := plan.MealSlot{Type: st, DisplayName: old.Name}
	if table, err := plan.TableByName(current.SlotTable); err == nil {
		if s, found := table.Slot(st); found {
			slot = s
		}
	}

	avoid := make([]string, 0, len(old.Foods))
	for _, f := range old.Foods {
		avoid = append(avoid, f.Food.Name)
	}

	meal, err := g.assemble(ctx, MealRequest{
		Slot:   slot,
		Target: old.Target,
		Filter: FilterForProfile(p),
		Avoid:  avoid,
	})
	if err != nil {
		return nil, err
	}
	return current.WithMeal(meal, g.now())
}

func (g *Generator) assemble(ctx context.Context, req MealRequest) (*plan.Meal, error) {
	meal, err := g.assembler.Assemble(ctx, req)
	if err == nil {
		return meal, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	g.logger.Warn("Meal assembly failed, using fallback foods",
		zap.String("slot", string(req.Slot.Type)),
		zap.Error(err),
	)
	return g.assembler.FallbackMeal(req), nil
}
