package mealplan

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nutriplan/v1/internal/ports/outbound"
	"go.uber.org/zap/zaptest"
)

// mapStore is a CacheRepository backed by a map; it ignores TTLs so that
// expiry is decided by the plan cache alone
type mapStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapStore() *mapStore {
	return &mapStore{data: make(map[string][]byte)}
}

func (s *mapStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, outbound.ErrCacheMiss
	}
	return v, nil
}

func (s *mapStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *mapStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *mapStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

func newTestAssembler(t *testing.T, catalog outbound.FoodCatalog, opts ...AssemblerOption) *Assembler {
	t.Helper()
	return NewAssembler(catalog, zaptest.NewLogger(t), opts...)
}

func newTestGenerator(t *testing.T, catalog outbound.FoodCatalog, opts ...AssemblerOption) *Generator {
	t.Helper()
	return NewGenerator(newTestAssembler(t, catalog, opts...), zaptest.NewLogger(t))
}
