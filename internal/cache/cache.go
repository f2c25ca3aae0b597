package cache

import "time"

// Cache - key/value хранилище с TTL
type Cache[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
}
