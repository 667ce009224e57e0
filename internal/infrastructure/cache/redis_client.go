// Package cache provides Redis connection management for the plan cache
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nutriplan/v1/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	// ErrKeyNotFound is returned by Get for absent keys
	ErrKeyNotFound = errors.New("redis: key not found")
	// ErrCircuitOpen is returned while the breaker rejects requests
	ErrCircuitOpen = errors.New("redis circuit breaker is open")
)

// RedisClient wraps a go-redis client with a circuit breaker so that an
// unreachable server fails fast instead of stalling every request.
type RedisClient struct {
	client         redis.UniversalClient
	logger         *zap.Logger
	circuitBreaker *CircuitBreaker
}

// NewRedisClient creates a client from configuration and checks the
// connection.
func NewRedisClient(cfg *config.RedisConfig, logger *zap.Logger) (*RedisClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	opts := &redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// Connection timeouts
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,

		ConnMaxIdleTime: time.Minute * 5,
		PoolTimeout:     time.Second * 10,
	}

	redisClient := NewRedisClientFrom(redis.NewUniversalClient(opts), logger)

	// Test initial connection
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := redisClient.Ping(ctx); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis client initialized successfully",
		zap.String("addr", cfg.Addr()),
		zap.Int("database", cfg.Database))

	return redisClient, nil
}

// NewRedisClientFrom wraps an existing client without checking it.
func NewRedisClientFrom(client redis.UniversalClient, logger *zap.Logger) *RedisClient {
	return &RedisClient{
		client:         client,
		logger:         logger.Named("redis"),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// Ping tests Redis connection
func (r *RedisClient) Ping(ctx context.Context) error {
	return r.do(func() error {
		return r.client.Ping(ctx).Err()
	})
}

// Get retrieves a value. A missing key returns ErrKeyNotFound and does not
// count as a failure.
func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	var (
		result []byte
		found  bool
	)
	err := r.do(func() error {
		var err error
		result, err = r.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		r.logger.Error("Redis GET failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	if !found {
		return nil, ErrKeyNotFound
	}
	return result, nil
}

// Set stores a value with TTL
func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.do(func() error {
		return r.client.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		r.logger.Error("Redis SET failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Delete removes keys
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	err := r.do(func() error {
		return r.client.Del(ctx, keys...).Err()
	})
	if err != nil {
		r.logger.Error("Redis DEL failed", zap.Strings("keys", keys), zap.Error(err))
	}
	return err
}

// Close closes the Redis client connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func (r *RedisClient) do(op func() error) error {
	if !r.circuitBreaker.AllowRequest() {
		return ErrCircuitOpen
	}
	if err := op(); err != nil {
		r.circuitBreaker.RecordFailure()
		return err
	}
	r.circuitBreaker.RecordSuccess()
	return nil
}

// CircuitState represents circuit breaker states
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker opens after maxFailures consecutive failures and lets a
// single probe through once timeout has passed.
type CircuitBreaker struct {
	maxFailures     int
	timeout         time.Duration
	failures        int
	lastFailureTime time.Time
	state           CircuitState
	now             func() time.Time
	mu              sync.Mutex
}

// NewCircuitBreaker creates a closed breaker
func NewCircuitBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures: maxFailures,
		timeout:     timeout,
		state:       CircuitClosed,
		now:         time.Now,
	}
}

// AllowRequest reports whether a request may proceed
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailureTime) < cb.timeout {
			return false
		}
		cb.state = CircuitHalfOpen
		return true
	case CircuitHalfOpen:
		// one probe at a time
		return false
	default:
		return true
	}
}

// RecordSuccess closes the breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure and opens the breaker at the threshold
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailureTime = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = CircuitOpen
	}
}

// State returns the current state
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
