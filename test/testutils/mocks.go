// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// FakeCatalog is an in-memory FoodCatalog matching terms as substrings
// of name or category
type FakeCatalog struct {
	foods []food.Record
	err   error

	mu    sync.Mutex
	terms []string
}

// NewFakeCatalog creates a catalog over foods
func NewFakeCatalog(foods ...food.Record) *FakeCatalog {
	return &FakeCatalog{foods: foods}
}

// NewFailingCatalog creates a catalog whose every search fails
func NewFailingCatalog(err error) *FakeCatalog {
	return &FakeCatalog{err: err}
}

// Search implements outbound.FoodCatalog
func (c *FakeCatalog) Search(ctx context.Context, term string, limit int) ([]food.Record, error) {
	c.mu.Lock()
	c.terms = append(c.terms, term)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.err != nil {
		return nil, c.err
	}

	needle := strings.ToLower(term)
	var out []food.Record
	for _, f := range c.foods {
		if strings.Contains(strings.ToLower(f.Name), needle) || strings.Contains(strings.ToLower(f.Category), needle) {
			out = append(out, f)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Terms returns every searched term in call order
func (c *FakeCatalog) Terms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.terms...)
}

// MockFoodCatalog provides a mock implementation of FoodCatalog
type MockFoodCatalog struct {
	mock.Mock
}

// Search searches the catalog
func (m *MockFoodCatalog) Search(ctx context.Context, term string, limit int) ([]food.Record, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]food.Record), args.Error(1)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get retrieves a value
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set stores a value
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete removes a value
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// StubProvider is a FoodProvider returning fixed drafts
type StubProvider struct {
	ProviderName   string
	ProviderRating int
	Drafts         []food.Draft
	Err            error
	Delay          time.Duration

	mu    sync.Mutex
	calls int
}

// Name implements outbound.FoodProvider
func (p *StubProvider) Name() string { return p.ProviderName }

// Rating implements outbound.FoodProvider
func (p *StubProvider) Rating() int { return p.ProviderRating }

// Search implements outbound.FoodProvider
func (p *StubProvider) Search(ctx context.Context, term string, limit int) ([]food.Draft, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Drafts, nil
}

// Calls returns how many searches were issued
func (p *StubProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// RecordingMetrics captures observations for assertions
type RecordingMetrics struct {
	mu        sync.Mutex
	Sources   []string
	Hits      int
	Misses    int
	Fallbacks map[string]int
	Requests  map[string]int
	Failures  map[string]int
}

// NewRecordingMetrics creates an empty recorder
func NewRecordingMetrics() *RecordingMetrics {
	return &RecordingMetrics{
		Fallbacks: make(map[string]int),
		Requests:  make(map[string]int),
		Failures:  make(map[string]int),
	}
}

var _ outbound.Metrics = (*RecordingMetrics)(nil)

func (m *RecordingMetrics) PlanGenerated(source string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sources = append(m.Sources, source)
}

func (m *RecordingMetrics) CacheLookup(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.Hits++
	} else {
		m.Misses++
	}
}

func (m *RecordingMetrics) FallbackFoods(slot string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fallbacks[slot] += n
}

func (m *RecordingMetrics) ProviderRequest(provider string, err error, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[provider]++
	if err != nil {
		m.Failures[provider]++
	}
}
