package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/nutriplan/v1/internal/ports/outbound"
	"github.com/nutriplan/v1/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newClient(t *testing.T, metrics outbound.Metrics, providers ...outbound.FoodProvider) *Client {
	t.Helper()
	return NewClient(providers, Config{Timeout: 200 * time.Millisecond, DefaultLimit: 10}, metrics, zaptest.NewLogger(t))
}

func recordNames(recs []food.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestSearchMergesByRatingAndDedupes(t *testing.T) {
	f := testutils.NewFoodFactory(1)
	crowd := &testutils.StubProvider{ProviderName: "crowd", ProviderRating: 4, Drafts: []food.Draft{
		f.Draft("Banana", 89, 1.1, 23, 0.3),
		f.Draft("Brown rice", 112, 2.3, 24, 0.8),
	}}
	curated := &testutils.StubProvider{ProviderName: "curated", ProviderRating: 5, Drafts: []food.Draft{
		f.Draft("  BROWN RICE ", 111, 2.6, 23, 0.9),
		f.Draft("Lentils", 116, 9, 20, 0.4),
	}}
	local := &testutils.StubProvider{ProviderName: "local", ProviderRating: 4, Drafts: []food.Draft{
		f.Draft("Apple", 52, 0.3, 14, 0.2),
	}}

	got, err := newClient(t, nil, crowd, curated, local).Search(context.Background(), "rice", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"BROWN RICE", "Lentils", "Banana", "Apple"}, recordNames(got))
	assert.Equal(t, 111.0, got[0].Calories, "highest rated provider wins duplicates")
}

func TestSearchTruncatesToLimit(t *testing.T) {
	f := testutils.NewFoodFactory(2)
	p := &testutils.StubProvider{ProviderName: "p", ProviderRating: 3, Drafts: []food.Draft{
		f.Draft("Apple", 52, 0.3, 14, 0.2),
		f.Draft("Orange", 47, 0.9, 12, 0.1),
		f.Draft("Banana", 89, 1.1, 23, 0.3),
	}}

	got, err := newClient(t, nil, p).Search(context.Background(), "fruit", 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "Orange"}, recordNames(got))
}

func TestSearchAppliesIngestionGate(t *testing.T) {
	f := testutils.NewFoodFactory(3)
	missing := f.Draft("Mystery powder", 300, 10, 50, 5)
	missing.Fat = nil
	p := &testutils.StubProvider{ProviderName: "p", ProviderRating: 3, Drafts: []food.Draft{
		f.Draft("Ok", 100, 5, 10, 2),
		f.Draft("Butter", 950, 1, 0, 100),
		f.Draft("Diet soda claims", 400, 0, 1, 0),
		missing,
		f.Draft("Cooked oats", 71, 2.5, 12, 1.5),
	}}

	got, err := newClient(t, nil, p).Search(context.Background(), "oats", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Cooked oats"}, recordNames(got))
}

func TestSearchProviderFailureIsIsolated(t *testing.T) {
	f := testutils.NewFoodFactory(4)
	metrics := testutils.NewRecordingMetrics()
	broken := &testutils.StubProvider{ProviderName: "broken", ProviderRating: 5, Err: errors.New("502 bad gateway")}
	slow := &testutils.StubProvider{ProviderName: "slow", ProviderRating: 5, Delay: time.Second,
		Drafts: []food.Draft{f.Draft("Late apple", 52, 0.3, 14, 0.2)}}
	ok := &testutils.StubProvider{ProviderName: "ok", ProviderRating: 3,
		Drafts: []food.Draft{f.Draft("Apple", 52, 0.3, 14, 0.2)}}

	got, err := newClient(t, metrics, broken, slow, ok).Search(context.Background(), "apple", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Apple"}, recordNames(got))
	assert.Equal(t, 1, metrics.Failures["broken"])
	assert.Equal(t, 1, metrics.Failures["slow"])
	assert.Zero(t, metrics.Failures["ok"])
	assert.Equal(t, 1, metrics.Requests["ok"])
}

func TestSearchAllProvidersFailed(t *testing.T) {
	a := &testutils.StubProvider{ProviderName: "a", ProviderRating: 5, Err: errors.New("timeout")}
	b := &testutils.StubProvider{ProviderName: "b", ProviderRating: 4, Err: errors.New("refused")}

	_, err := newClient(t, nil, a, b).Search(context.Background(), "apple", 0)

	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestSearchEmptyResultsAreNotFailures(t *testing.T) {
	p := &testutils.StubProvider{ProviderName: "p", ProviderRating: 3}

	got, err := newClient(t, nil, p).Search(context.Background(), "unobtainium", 0)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &testutils.StubProvider{ProviderName: "p", ProviderRating: 3}

	_, err := newClient(t, nil, p).Search(ctx, "apple", 0)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchBlankTerm(t *testing.T) {
	p := &testutils.StubProvider{ProviderName: "p", ProviderRating: 3}
	c := newClient(t, nil, p)

	got, err := c.Search(context.Background(), "   ", 5)

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, p.Calls())
	assert.Equal(t, []string{"p"}, c.Providers())
}
