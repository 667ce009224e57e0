package mealplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutriplan/v1/internal/domain/plan"
	apperrors "github.com/nutriplan/v1/pkg/errors"
	"github.com/nutriplan/v1/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func generatedPlan(t *testing.T) *plan.DayPlan {
	t.Helper()
	p := testutils.NewProfileBuilder().Build()
	dp, err := newTestGenerator(t, testutils.NewFakeCatalog(testutils.SampleFoods()...)).
		Generate(context.Background(), plan.Targets{Calories: 2000, Protein: 120, Carbs: 230, Fat: 60}, p, plan.FiveMeals())
	require.NoError(t, err)
	return dp
}

func TestKey(t *testing.T) {
	assert.Equal(t, "mealplan:u1:abc", Key("u1", "abc"))
}

func TestPlanCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	metrics := testutils.NewRecordingMetrics()
	cache := NewPlanCache(store, time.Hour, metrics, zaptest.NewLogger(t))
	p := testutils.NewProfileBuilder().Build()
	dp := generatedPlan(t)

	_, ok := cache.Get(ctx, "user-1", p)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "user-1", p, dp, 0))
	got, ok := cache.Get(ctx, "user-1", p)
	require.True(t, ok)
	assert.Equal(t, dp, got)

	_, ok = cache.Get(ctx, "user-2", p)
	assert.False(t, ok, "keys are per user")

	renamed := testutils.NewProfileBuilder().WithDisplayName("Someone else").Build()
	_, ok = cache.Get(ctx, "user-1", renamed)
	assert.True(t, ok, "display name does not affect the key")

	heavier := testutils.NewProfileBuilder().WithWeight(71).Build()
	_, ok = cache.Get(ctx, "user-1", heavier)
	assert.False(t, ok)

	assert.Equal(t, 2, metrics.Hits)
	assert.Equal(t, 3, metrics.Misses)

	require.NoError(t, cache.Invalidate(ctx, "user-1", p))
	_, ok = cache.Get(ctx, "user-1", p)
	assert.False(t, ok)
}

func TestPlanCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewPlanCache(newMapStore(), time.Hour, nil, zaptest.NewLogger(t))
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	p := testutils.NewProfileBuilder().Build()

	require.NoError(t, cache.Put(ctx, "user-1", p, generatedPlan(t), 10*time.Minute))

	now = now.Add(9 * time.Minute)
	_, ok := cache.Get(ctx, "user-1", p)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = cache.Get(ctx, "user-1", p)
	assert.False(t, ok, "entry expired even though the store still holds it")
}

func TestPlanCacheStoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(testutils.MockCacheRepository)
	repo.On("Get", mock.Anything, mock.AnythingOfType("string")).Return(nil, errors.New("connection refused"))
	repo.On("Set", mock.Anything, mock.AnythingOfType("string"), mock.Anything, time.Hour).Return(errors.New("connection refused"))
	cache := NewPlanCache(repo, time.Hour, nil, zaptest.NewLogger(t))
	p := testutils.NewProfileBuilder().Build()

	_, ok := cache.Get(ctx, "user-1", p)
	assert.False(t, ok, "read failures are misses")

	err := cache.Put(ctx, "user-1", p, generatedPlan(t), 0)
	assert.True(t, apperrors.Is(err, apperrors.CodeCacheError))
	repo.AssertExpectations(t)
}

func TestPlanCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	cache := NewPlanCache(store, time.Hour, nil, zaptest.NewLogger(t))
	p := testutils.NewProfileBuilder().Build()
	require.NoError(t, store.Set(ctx, Key("user-1", p.Fingerprint()), []byte("{not json"), time.Hour))

	_, ok := cache.Get(ctx, "user-1", p)
	assert.False(t, ok)
}
