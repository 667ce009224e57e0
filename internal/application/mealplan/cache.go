package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nutriplan/v1/internal/domain/plan"
	"github.com/nutriplan/v1/internal/domain/profile"
	"github.com/nutriplan/v1/internal/ports/outbound"
	apperrors "github.com/nutriplan/v1/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPlanTTL applies when the cache is created with a zero TTL
const DefaultPlanTTL = 24 * time.Hour

// CacheEntry is the stored form of a cached plan
type CacheEntry struct {
	Plan      *plan.DayPlan `json:"plan"`
	CreatedAt time.Time     `json:"created_at"`
	TTL       time.Duration `json:"ttl"`
}

// Expired reports whether the entry is past its TTL at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(e.TTL))
}

// PlanCache stores plans keyed by user and profile fingerprint. Store
// errors are logged and reported as misses; concurrent writers to the
// same key resolve as last write wins.
type PlanCache struct {
	repo    outbound.CacheRepository
	ttl     time.Duration
	metrics outbound.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewPlanCache creates a plan cache over repo
func NewPlanCache(repo outbound.CacheRepository, ttl time.Duration, metrics outbound.Metrics, logger *zap.Logger) *PlanCache {
	if ttl <= 0 {
		ttl = DefaultPlanTTL
	}
	if metrics == nil {
		metrics = outbound.NopMetrics{}
	}
	return &PlanCache{
		repo:    repo,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger.Named("plan-cache"),
		now:     time.Now,
	}
}

// Key returns the store key for a user and profile fingerprint.
func Key(userID, fingerprint string) string {
	return fmt.Sprintf("mealplan:%s:%s", userID, fingerprint)
}

// TTL returns the default entry lifetime.
func (c *PlanCache) TTL() time.Duration { return c.ttl }

// Get returns the cached plan for the profile, or false on a miss.
func (c *PlanCache) Get(ctx context.Context, userID string, p profile.Profile) (*plan.DayPlan, bool) {
	key := Key(userID, p.Fingerprint())

	data, err := c.repo.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, outbound.ErrCacheMiss) {
			c.logger.Warn("Plan cache read failed",
				zap.String("key", key),
				zap.Error(apperrors.NewCacheError("read plan", err)),
			)
		}
		c.metrics.CacheLookup(false)
		return nil, false
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Plan == nil {
		c.logger.Warn("Discarding unreadable plan cache entry",
			zap.String("key", key),
			zap.Error(err),
		)
		c.metrics.CacheLookup(false)
		return nil, false
	}
	if entry.Expired(c.now()) {
		c.metrics.CacheLookup(false)
		return nil, false
	}

	c.metrics.CacheLookup(true)
	return entry.Plan, true
}

// Put stores dp for the profile. A non-positive ttl uses the cache default.
func (c *PlanCache) Put(ctx context.Context, userID string, p profile.Profile, dp *plan.DayPlan, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	key := Key(userID, p.Fingerprint())

	data, err := json.Marshal(CacheEntry{
		Plan:      dp,
		CreatedAt: c.now().UTC().Round(0),
		TTL:       ttl,
	})
	if err != nil {
		return apperrors.NewCacheError("encode plan", err)
	}
	if err := c.repo.Set(ctx, key, data, ttl); err != nil {
		return apperrors.NewCacheError("write plan", err)
	}
	return nil
}

// Invalidate removes the cached plan for the profile.
func (c *PlanCache) Invalidate(ctx context.Context, userID string, p profile.Profile) error {
	if err := c.repo.Delete(ctx, Key(userID, p.Fingerprint())); err != nil {
		return apperrors.NewCacheError("delete plan", err)
	}
	return nil
}
