package search

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/kitbuilder587/research-assistant/internal/cache"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

const DefaultCacheTTL = time.Hour

// Cached - SearchClient с кешем ответов по (нормализованный запрос, количество).
// Ошибки не кешируются.
type Cached struct {
	next    SearchClient
	cache   cache.Cache[[]SearchResult]
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewCached(next SearchClient, c cache.Cache[[]SearchResult], ttl time.Duration, m *metrics.Metrics) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: c, ttl: ttl, metrics: m}
}

func (c *Cached) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	key := cacheKey(req.Query, req.MaxResults)

	if results, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.RecordCacheHit()
		}
		return &SearchResponse{Query: req.Query, Results: results}, nil
	}
	if c.metrics != nil {
		c.metrics.RecordCacheMiss()
	}

	resp, err := c.next.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, resp.Results, c.ttl)
	return resp, nil
}

func cacheKey(query string, count int) string {
	data := fmt.Sprintf("%s|%d", normalizeQuery(query), count)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("search:%x", hash[:8])
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Join(strings.Fields(q), " ")
}
