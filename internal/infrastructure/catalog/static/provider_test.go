package static

import (
	"context"
	"testing"

	"github.com/nutriplan/v1/internal/domain/food"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryFoodPassesIngestion(t *testing.T) {
	p := New()
	for _, d := range p.foods {
		_, err := food.FromDraft(d)
		assert.NoError(t, err, d.Name)
	}
}

func TestSearch(t *testing.T) {
	p := New()

	got, err := p.Search(context.Background(), "BREAD", 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = p.Search(context.Background(), "fruit", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = p.Search(context.Background(), "unobtainium", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Search(ctx, "apple", 5)
	assert.ErrorIs(t, err, context.Canceled)
}
