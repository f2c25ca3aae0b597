package memory

import (
	"context"
	"sync"
	"time"
)

const DefaultCleanupInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache - in-memory кеш с TTL, живет пока живет процесс
type Cache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	stop    chan struct{}
	stopped bool
}

func New[V any]() *Cache[V] {
	return NewWithContext[V](context.Background(), DefaultCleanupInterval)
}

// NewWithContext запускает фоновую очистку, которая завершается по ctx или Stop
func NewWithContext[V any](ctx context.Context, cleanupEvery time.Duration) *Cache[V] {
	if cleanupEvery <= 0 {
		cleanupEvery = DefaultCleanupInterval
	}
	c := &Cache[V]{
		items: make(map[string]entry[V]),
		stop:  make(chan struct{}),
	}
	go c.cleanup(ctx, cleanupEvery)
	return c
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expiresAt: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Len - количество записей, включая еще не вычищенные просроченные
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[V]) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.stop)
	}
	c.mu.Unlock()
}

func (c *Cache[V]) cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

func (c *Cache[V]) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
	}
}
