package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/nutriplan/v1/internal/application/mealplan"
	"github.com/nutriplan/v1/internal/application/nutrition"
	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"github.com/nutriplan/v1/internal/infrastructure/catalog"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/openfoodfacts"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/static"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/usda"
	"github.com/nutriplan/v1/internal/infrastructure/persistence/memory"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"github.com/nutriplan/v1/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// profileFlags are shared by every command that takes a profile
type profileFlags struct {
	age          int
	height       float64
	weight       float64
	gender       string
	activity     string
	goal         string
	restrictions []string
	preferences  []string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.age, "age", 30, "Age in years")
	cmd.Flags().Float64Var(&f.height, "height", 170, "Height in cm")
	cmd.Flags().Float64Var(&f.weight, "weight", 70, "Weight in kg")
	cmd.Flags().StringVar(&f.gender, "gender", "male", "male, female or other")
	cmd.Flags().StringVar(&f.activity, "activity", "moderate", "sedentary, light, moderate or intense")
	cmd.Flags().StringVar(&f.goal, "goal", "maintenance", "weight-loss, maintenance or muscle-gain")
	cmd.Flags().StringSliceVar(&f.restrictions, "restrict", nil, "Foods or allergens to exclude (repeatable)")
	cmd.Flags().StringSliceVar(&f.preferences, "prefer", nil, "Diet preferences such as vegan or low-carb (repeatable)")
}

func (f profileFlags) profile() profile.Profile {
	return profile.Profile{
		Age:           f.age,
		Height:        f.height,
		Weight:        f.weight,
		Gender:        profile.Gender(f.gender),
		ActivityLevel: profile.ActivityLevel(f.activity),
		Goal:          profile.Goal(f.goal),
		Restrictions:  f.restrictions,
		Preferences:   f.preferences,
	}
}

type generateOptions struct {
	profileFlags
	slots     string
	providers []string
	timeout   time.Duration
	seed      int64
	meal      string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a day plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Config{Level: logLevelFlag, Format: "console"})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return runGenerate(cmd.Context(), opts, log, os.Stdout)
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&opts.slots, "slots", plan.TableFiveMeals, "Slot table: five_meals or six_meals")
	cmd.Flags().StringSliceVar(&opts.providers, "providers", []string{static.Name}, "Food providers: static, usda, openfoodfacts")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall generation deadline")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "Pick among the top foods with this seed instead of always the best")
	cmd.Flags().StringVar(&opts.meal, "regenerate", "", "After generating, rebuild this slot and print both plans")
	return cmd
}

func runGenerate(ctx context.Context, opts generateOptions, log *zap.Logger, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	table, err := plan.TableByName(opts.slots)
	if err != nil {
		return err
	}
	providers, err := buildProviders(opts.providers, opts.timeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	repo := memory.NewCacheRepository()
	defer func() { _ = repo.Close() }()

	selectorOpt := mealplan.WithSelector(mealplan.NewSelector())
	if opts.seed != 0 {
		selectorOpt = mealplan.WithSelector(mealplan.NewVarietySelector(rand.New(rand.NewSource(opts.seed))))
	}
	client := catalog.NewClient(providers, catalog.DefaultConfig(), nil, log)
	svc := mealplan.NewService(
		mealplan.NewGenerator(mealplan.NewAssembler(client, log, selectorOpt), log),
		mealplan.NewPlanCache(repo, mealplan.DefaultPlanTTL, nil, log),
		table,
		nil,
		log,
	)

	const userID = "local"
	p := opts.profile()
	dp, err := svc.GeneratePlan(ctx, userID, p)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if opts.meal == "" {
		return enc.Encode(dp)
	}

	updated, err := svc.RegenerateMeal(ctx, userID, p, nil, plan.SlotType(opts.meal))
	if err != nil {
		return err
	}
	return enc.Encode(struct {
		Original    *plan.DayPlan `json:"original"`
		Regenerated *plan.DayPlan `json:"regenerated"`
	}{dp, updated})
}

func buildProviders(names []string, timeout time.Duration) ([]outbound.FoodProvider, error) {
	providers := make([]outbound.FoodProvider, 0, len(names))
	for _, name := range names {
		switch name {
		case static.Name:
			providers = append(providers, static.New())
		case usda.Name:
			providers = append(providers, usda.New(usda.DefaultBaseURL, os.Getenv("FDC_API_KEY"), timeout))
		case openfoodfacts.Name:
			providers = append(providers, openfoodfacts.New(openfoodfacts.DefaultBaseURL, "planctl/1.0", timeout))
		default:
			return nil, fmt.Errorf("unknown provider %q", name)
		}
	}
	return providers, nil
}

func newTargetsCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Print daily calorie and macro targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTargets(flags.profile(), os.Stdout)
		},
	}
	flags.register(cmd)
	return cmd
}

func runTargets(p profile.Profile, out io.Writer) error {
	targets, err := nutrition.Targets(p)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(targets)
}
