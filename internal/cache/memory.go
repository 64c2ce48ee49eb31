package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", func(cfg ProviderConfig) (Cache, error) {
		return newMemoryCache(cfg), nil
	})
}

// memoryCache is an expiring LRU living as long as the process. Validators
// kept here only help when several jobs run in one process.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) *memoryCache {
	// golang-lru calls its callback on eviction, expiry and Remove alike.
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = lru.EvictCallback[string, []byte](cfg.OnEvict)
	}
	return &memoryCache{entries: lru.NewLRU(cfg.Size, onEvict, cfg.TTL)}
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.entries.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.entries.Add(key, value) }

func (m *memoryCache) Delete(key string) { m.entries.Remove(key) }

func (m *memoryCache) Contains(key string) bool { return m.entries.Contains(key) }

func (m *memoryCache) Len() int { return m.entries.Len() }

func (m *memoryCache) Close() error { return nil }
