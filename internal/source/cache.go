package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"catalog-service/internal/models"
	"catalog-service/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	keyProducts   = "catalog:products"
	keyCategories = "catalog:categories"
)

// CachedSource wraps a Source with a Redis read-through cache. Cache
// failures degrade to the underlying source; they never surface to the
// caller. Only upstream responses are cached, never cart or filter state.
type CachedSource struct {
	next   Source
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource connects to Redis and wraps next with the cache.
func NewCachedSource(next Source, addr, password string, db int, ttl time.Duration) (*CachedSource, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &CachedSource{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: util.GetLogger(),
	}, nil
}

// Close closes the Redis connection.
func (c *CachedSource) Close() error {
	return c.rdb.Close()
}

// Products returns the cached product collection, falling back to the
// underlying source on a miss.
func (c *CachedSource) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if c.lookup(ctx, keyProducts, &products) {
		return products, nil
	}

	products, err := c.next.Products(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, keyProducts, products)
	return products, nil
}

// ProductsByCategory returns the cached per-category collection,
// falling back to the underlying source on a miss.
func (c *CachedSource) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	key := keyProducts + ":" + category
	var products []models.Product
	if c.lookup(ctx, key, &products) {
		return products, nil
	}

	products, err := c.next.ProductsByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, products)
	return products, nil
}

// Categories returns the cached category list, falling back to the
// underlying source on a miss.
func (c *CachedSource) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if c.lookup(ctx, keyCategories, &categories) {
		return categories, nil
	}

	categories, err := c.next.Categories(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, keyCategories, categories)
	return categories, nil
}

// lookup reports whether key was found and decoded into out.
func (c *CachedSource) lookup(ctx context.Context, key string, out interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		util.CatalogCacheMissesTotal.WithLabelValues(key).Inc()
		return false
	}
	if err != nil {
		c.logger.Warn("Cache read failed, falling back to source",
			zap.String("key", key),
			zap.Error(err))
		util.CatalogCacheMissesTotal.WithLabelValues(key).Inc()
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("Cache entry corrupt, falling back to source",
			zap.String("key", key),
			zap.Error(err))
		util.CatalogCacheMissesTotal.WithLabelValues(key).Inc()
		return false
	}

	util.CatalogCacheHitsTotal.WithLabelValues(key).Inc()
	return true
}

// store writes a cache entry best-effort.
func (c *CachedSource) store(ctx context.Context, key string, val interface{}) {
	raw, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("Cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
