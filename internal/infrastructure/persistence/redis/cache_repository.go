// Package redis provides the Redis-backed plan store
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/nutriplan/v1/internal/infrastructure/cache"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// CacheRepository implements the cache repository interface over Redis
type CacheRepository struct {
	client *cache.RedisClient
	prefix string
	logger *zap.Logger
}

// NewCacheRepository creates a Redis cache repository. prefix is prepended
// to every key so several deployments can share a database.
func NewCacheRepository(client *cache.RedisClient, prefix string, logger *zap.Logger) *CacheRepository {
	return &CacheRepository{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

var _ outbound.CacheRepository = (*CacheRepository)(nil)

// Get retrieves a value. Absent keys return outbound.ErrCacheMiss.
func (r *CacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return nil, outbound.ErrCacheMiss
	}
	if err != nil {
		r.logger.Debug("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return data, nil
}

// Set stores a value in cache with TTL
func (r *CacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl)
}

// Delete removes a value from cache
func (r *CacheRepository) Delete(ctx context.Context, key string) error {
	return r.client.Delete(ctx, r.prefix+key)
}
