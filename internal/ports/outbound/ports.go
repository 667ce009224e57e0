// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the planner uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/nutriplan/v1/internal/domain/food"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache miss")

// FoodProvider is one external nutrition database
type FoodProvider interface {
	// Name identifies the provider in logs and metrics
	Name() string
	// Rating is the data-quality trust score; higher sorts first
	Rating() int
	Search(ctx context.Context, term string, limit int) ([]food.Draft, error)
}

// FoodCatalog searches every configured provider and returns validated,
// deduplicated records. It returns an error only when all providers fail.
type FoodCatalog interface {
	Search(ctx context.Context, term string, limit int) ([]food.Record, error)
}

// CacheRepository is a process-external key-value store
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Metrics records planner observations
type Metrics interface {
	PlanGenerated(source string, d time.Duration)
	CacheLookup(hit bool)
	FallbackFoods(slot string, n int)
	ProviderRequest(provider string, err error, d time.Duration)
}

// NopMetrics discards every observation
type NopMetrics struct{}

func (NopMetrics) PlanGenerated(string, time.Duration)          {}
func (NopMetrics) CacheLookup(bool)                             {}
func (NopMetrics) FallbackFoods(string, int)                    {}
func (NopMetrics) ProviderRequest(string, error, time.Duration) {}
