package services_test

import (
	"testing"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/services"

	"github.com/stretchr/testify/assert"
)

func TestLocalPortfolioCache(t *testing.T) {
	ctx := testContext()
	cache := services.NewLocalPortfolioCache(time.Minute)

	_, ok := cache.Get(ctx, "jane@example.com")
	assert.False(t, ok)

	cache.Set(ctx, "Jane@Example.com", cache.Generation(ctx, "jane@example.com"), []models.Position{{ID: 1}})
	cached, ok := cache.Get(ctx, "jane@example.com")
	assert.True(t, ok)
	assert.Equal(t, []models.Position{{ID: 1}}, cached)

	cached[0].ID = 99
	again, _ := cache.Get(ctx, "jane@example.com")
	assert.Equal(t, 1, again[0].ID)

	cache.Invalidate(ctx, "JANE@example.com")
	_, ok = cache.Get(ctx, "jane@example.com")
	assert.False(t, ok)
}

func TestLocalPortfolioCacheDropsFillAfterInvalidate(t *testing.T) {
	ctx := testContext()
	cache := services.NewLocalPortfolioCache(time.Minute)

	generation := cache.Generation(ctx, "jane@example.com")
	cache.Invalidate(ctx, "Jane@example.com")
	cache.Set(ctx, "jane@example.com", generation, []models.Position{{ID: 1}})

	_, ok := cache.Get(ctx, "jane@example.com")
	assert.False(t, ok)

	cache.Set(ctx, "jane@example.com", cache.Generation(ctx, "jane@example.com"), []models.Position{{ID: 2}})
	cached, ok := cache.Get(ctx, "jane@example.com")
	assert.True(t, ok)
	assert.Equal(t, 2, cached[0].ID)
}

func TestNoopPortfolioCache(t *testing.T) {
	ctx := testContext()
	cache := services.NoopPortfolioCache()
	cache.Set(ctx, "jane@example.com", 0, []models.Position{{ID: 1}})
	_, ok := cache.Get(ctx, "jane@example.com")
	assert.False(t, ok)
}
