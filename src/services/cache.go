package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"investmentapp/src/models"
	"investmentapp/src/utils"
	redis_utils "investmentapp/src/utils/redis"
)

// PortfolioCache is a best-effort read cache keyed by holder email. Entries
// are dropped after every committed mutation of the holder's positions.
//
// Fills are versioned: a reader takes Generation before loading from the
// store and passes it to Set. Invalidate moves the generation on, so a fill
// that raced with a commit is discarded instead of caching stale positions.
type PortfolioCache interface {
	Get(ctx context.Context, email string) ([]models.Position, bool)
	Generation(ctx context.Context, email string) uint64
	Set(ctx context.Context, email string, generation uint64, positions []models.Position)
	Invalidate(ctx context.Context, email string)
}

type noopPortfolioCache struct{}

func (noopPortfolioCache) Get(context.Context, string) ([]models.Position, bool) { return nil, false }
func (noopPortfolioCache) Generation(context.Context, string) uint64 { return 0 }
func (noopPortfolioCache) Set(context.Context, string, uint64, []models.Position) {}
func (noopPortfolioCache) Invalidate(context.Context, string) {}

// NoopPortfolioCache disables caching.
func NoopPortfolioCache() PortfolioCache {
	return noopPortfolioCache{}
}

// NewLocalPortfolioCache keeps portfolios in process memory for ttl.
func NewLocalPortfolioCache(ttl time.Duration) PortfolioCache {
	return &localPortfolioCache{
		entries:     utils.NewCache[[]models.Position](),
		generations: map[string]uint64{},
		ttl:         ttl,
	}
}

type localPortfolioCache struct {
	mu          sync.Mutex
	entries     *utils.Cache[[]models.Position]
	generations map[string]uint64
	ttl         time.Duration
}

func (c *localPortfolioCache) Get(_ context.Context, email string) ([]models.Position, bool) {
	positions, ok := c.entries.Get(utils.NormalizeEmail(email))
	if !ok {
		return nil, false
	}
	return append([]models.Position{}, positions...), true
}

func (c *localPortfolioCache) Generation(_ context.Context, email string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[utils.NormalizeEmail(email)]
}

func (c *localPortfolioCache) Set(_ context.Context, email string, generation uint64, positions []models.Position) {
	key := utils.NormalizeEmail(email)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[key] != generation {
		return
	}
	c.entries.Set(key, append([]models.Position{}, positions...), c.ttl)
}

func (c *localPortfolioCache) Invalidate(_ context.Context, email string) {
	key := utils.NormalizeEmail(email)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	c.entries.Delete(key)
}

// NewRedisPortfolioCache shares cached portfolios between processes. Redis
// failures are logged and treated as misses.
func NewRedisPortfolioCache(handler *redis_utils.RedisHandler, ttl time.Duration) PortfolioCache {
	return &redisPortfolioCache{handler: handler, ttl: ttl}
}

type redisPortfolioCache struct {
	handler *redis_utils.RedisHandler
	ttl     time.Duration
}

func portfolioKey(email string) string {
	return "portfolio:" + redis_utils.GenerateUUID("portfolio", utils.NormalizeEmail(email))
}

func portfolioVersionKey(email string) string {
	return "portfolio:version:" + redis_utils.GenerateUUID("portfolio", utils.NormalizeEmail(email))
}

// staleGeneration never matches a stored version, so a fill that could not
// read the version is dropped.
const staleGeneration = ^uint64(0)

func (c *redisPortfolioCache) Get(ctx context.Context, email string) ([]models.Position, bool) {
	var positions []models.Position
	if err := c.handler.Get(ctx, portfolioKey(email), &positions); err != nil {
		if !errors.Is(err, redis_utils.ErrCacheMiss) {
			utils.LoggerFromContext(ctx).WithError(err).Warn("portfolio cache read failed")
		}
		return nil, false
	}
	return positions, true
}

func (c *redisPortfolioCache) Generation(ctx context.Context, email string) uint64 {
	v, err := c.handler.Version(ctx, portfolioVersionKey(email))
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("portfolio cache version read failed")
		return staleGeneration
	}
	return uint64(v)
}

func (c *redisPortfolioCache) Set(ctx context.Context, email string, generation uint64, positions []models.Position) {
	if generation == staleGeneration {
		return
	}
	stored, err := c.handler.SetIfVersion(ctx, portfolioVersionKey(email), int64(generation), portfolioKey(email), positions, c.ttl)
	if err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("portfolio cache write failed")
		return
	}
	if !stored {
		utils.LoggerFromContext(ctx).WithField("email", email).Debug("portfolio changed while loading, not cached")
	}
}

func (c *redisPortfolioCache) Invalidate(ctx context.Context, email string) {
	if err := c.handler.BumpVersion(ctx, portfolioVersionKey(email), portfolioKey(email)); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Warn("portfolio cache invalidation failed")
	}
}
