// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/nutriplan/v1/internal/application/mealplan"
	"github.com/nutriplan/v1/internal/infrastructure/cache"
	"github.com/nutriplan/v1/internal/infrastructure/catalog"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/openfoodfacts"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/static"
	"github.com/nutriplan/v1/internal/infrastructure/catalog/usda"
	"github.com/nutriplan/v1/internal/infrastructure/config"
	"github.com/nutriplan/v1/internal/infrastructure/http/server"
	"github.com/nutriplan/v1/internal/infrastructure/monitoring"
	"github.com/nutriplan/v1/internal/infrastructure/persistence/memory"
	redisRepo "github.com/nutriplan/v1/internal/infrastructure/persistence/redis"
	"github.com/nutriplan/v1/internal/ports/inbound"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"github.com/nutriplan/v1/pkg/healthcheck"
	"github.com/nutriplan/v1/pkg/logger"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the full API application
var Module = fx.Options(
	ConfigModule,
	CoreModule,
	LifecycleModule,
)

// CoreModule provides every component below configuration
var CoreModule = fx.Options(
	LoggerModule,
	MetricsModule,
	CacheModule,
	CatalogModule,
	ServiceModule,
	HealthModule,
	HTTPModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	NewLogger,
)

// MetricsModule provides the Prometheus collector and the planner metrics
// port. The collector is nil when metrics are disabled.
var MetricsModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *monitoring.MetricsCollector {
		if !cfg.Monitoring.EnableMetrics {
			return nil
		}
		return monitoring.NewMetricsCollector(log)
	},
	func(m *monitoring.MetricsCollector) outbound.Metrics {
		if m == nil {
			return outbound.NopMetrics{}
		}
		return m
	},
)

// CacheModule provides the plan store
var CacheModule = fx.Provide(
	NewCacheRepository,
)

// CatalogModule provides the food catalog over the configured providers
var CatalogModule = fx.Provide(
	NewProviders,
	func(providers []outbound.FoodProvider, cfg *config.Config, metrics outbound.Metrics, log *zap.Logger) outbound.FoodCatalog {
		return NewCatalog(providers, cfg, metrics, log)
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	NewService,
)

// HealthModule provides readiness checks for /health
var HealthModule = fx.Provide(
	NewHealthCheck,
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// NewLogger builds the application logger from configuration
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Debug,
	})
}

// NewProviders builds the configured food providers in configuration order
func NewProviders(cfg *config.Config) ([]outbound.FoodProvider, error) {
	providers := make([]outbound.FoodProvider, 0, len(cfg.Catalog.Providers))
	for _, name := range cfg.Catalog.Providers {
		switch name {
		case usda.Name:
			providers = append(providers, usda.New(cfg.Catalog.USDA.BaseURL, cfg.Catalog.USDA.APIKey, cfg.Catalog.Timeout))
		case openfoodfacts.Name:
			providers = append(providers, openfoodfacts.New(cfg.Catalog.OpenFoodFacts.BaseURL, cfg.Catalog.OpenFoodFacts.UserAgent, cfg.Catalog.Timeout))
		case static.Name:
			providers = append(providers, static.New())
		default:
			return nil, fmt.Errorf("unknown food provider %q", name)
		}
	}
	return providers, nil
}

// NewCatalog creates the merging catalog client
func NewCatalog(providers []outbound.FoodProvider, cfg *config.Config, metrics outbound.Metrics, log *zap.Logger) *catalog.Client {
	return catalog.NewClient(providers, catalog.Config{
		Timeout:           cfg.Catalog.Timeout,
		DefaultLimit:      cfg.Catalog.DefaultLimit,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		Burst:             cfg.Catalog.Burst,
	}, metrics, log)
}

// NewCacheRepository connects to Redis when enabled and falls back to the
// in-memory store when it is disabled or unreachable.
func NewCacheRepository(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(&cfg.Redis, log)
		if err == nil {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error { return client.Close() },
			})
			return redisRepo.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
		}
		log.Warn("Redis unavailable, using in-memory plan cache", zap.Error(err))
	}

	repo := memory.NewCacheRepository()
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return repo.Close() },
	})
	log.Info("Using in-memory plan cache")
	return repo
}

// NewHealthCheck registers the plan store and catalog checks. A failing
// store only degrades the service since plans are still generated.
func NewHealthCheck(cfg *config.Config, repo outbound.CacheRepository, providers []outbound.FoodProvider, log *zap.Logger) *healthcheck.HealthCheck {
	h := healthcheck.New(cfg.App.Version, log)
	h.Register("plan_cache", healthcheck.CheckFunc{
		Probe:      func(ctx context.Context) error { return probeStore(ctx, repo) },
		FailStatus: healthcheck.StatusDegraded,
	})
	h.Register("food_catalog", healthcheck.CheckFunc{
		Probe: func(context.Context) error {
			if len(providers) == 0 {
				return fmt.Errorf("no food providers configured")
			}
			return nil
		},
	})
	return h
}

const probeKey = "healthcheck:probe"

func probeStore(ctx context.Context, repo outbound.CacheRepository) error {
	if err := repo.Set(ctx, probeKey, []byte("ok"), time.Minute); err != nil {
		return err
	}
	if _, err := repo.Get(ctx, probeKey); err != nil {
		return err
	}
	return repo.Delete(ctx, probeKey)
}

// NewSelector returns the deterministic selector, or a seeded variety
// selector when configured. A zero seed draws one from the clock.
func NewSelector(cfg *config.Config) *mealplan.Selector {
	if !cfg.Planner.Variety {
		return mealplan.NewSelector()
	}
	seed := cfg.Planner.VarietySeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return mealplan.NewVarietySelector(rand.New(rand.NewSource(seed)))
}

// NewService wires the planner use cases
func NewService(
	cfg *config.Config,
	catalog outbound.FoodCatalog,
	repo outbound.CacheRepository,
	metrics outbound.Metrics,
	log *zap.Logger,
) inbound.MealPlanService {
	assembler := mealplan.NewAssembler(catalog, log,
		mealplan.WithSelector(NewSelector(cfg)),
		mealplan.WithSearchLimit(cfg.Planner.SearchLimit),
		mealplan.WithMetrics(metrics),
	)
	return mealplan.NewService(
		mealplan.NewGenerator(assembler, log),
		mealplan.NewPlanCache(repo, cfg.Planner.CacheTTL, metrics, log),
		cfg.SlotTable(),
		metrics,
		log,
	)
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting meal planner",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.Strings("providers", cfg.Catalog.Providers),
				zap.String("slot_table", cfg.Planner.SlotTable),
			)

			go func() {
				if err := srv.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down meal planner")

			if err := srv.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			// Flush logs
			_ = log.Sync()

			return nil
		},
	})
}
