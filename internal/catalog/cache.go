// internal/catalog/cache.go
package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"cinema-sage/internal/common/database"
	"cinema-sage/internal/common/metrics"
)

const cacheKeyPrefix = "catalog:"

// Store is the subset of database.RedisClient the cache needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachingGateway serves repeated catalog queries from redis. Only successful
// bodies are stored, and a store outage degrades to a direct fetch.
type CachingGateway struct {
	next   Gateway
	store  Store
	ttl    time.Duration
	logger Logger
}

func NewCachingGateway(next Gateway, store Store, ttl time.Duration, log Logger) *CachingGateway {
	return &CachingGateway{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: log,
	}
}

func (c *CachingGateway) Fetch(ctx context.Context, query string) (string, error) {
	key := cacheKeyPrefix + query

	cached, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CatalogCacheResults.WithLabelValues("hit").Inc()
		return cached, nil
	case stderrors.Is(err, database.ErrCacheMiss):
		metrics.CatalogCacheResults.WithLabelValues("miss").Inc()
	default:
		metrics.CatalogCacheResults.WithLabelValues("error").Inc()
		c.logger.Warn("catalog cache read failed, bypassing", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}

	body, err := c.next.Fetch(ctx, query)
	if err != nil {
		return "", err
	}

	if err := c.store.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
	return body, nil
}
