package boundary

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/observability"
)

// CachedFetcher wraps a BoundaryFetcher with an expiring in-memory LRU cache.
type CachedFetcher struct {
	inner   domain.BoundaryFetcher
	cache   *expirable.LRU[string, []byte]
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher.
func NewCachedFetcher(inner domain.BoundaryFetcher, maxEntries int, ttl time.Duration, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if body, ok := c.cache.Get(url); ok {
		c.metrics.BoundaryCache.WithLabelValues("hit").Inc()
		return body, nil
	}
	c.metrics.BoundaryCache.WithLabelValues("miss").Inc()

	body, err := c.inner.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.cache.Add(url, body)
	return body, nil
}

// Len returns the number of cached documents.
func (c *CachedFetcher) Len() int {
	return c.cache.Len()
}
