package cache

import (
	"sync"
	"testing"
)

// opener creates a fresh, empty cache holding at most size entries.
type opener func(t *testing.T, size int, onEvict EvictCallback) Cache

// evictLog collects evicted keys; Redis reports them from the caller goroutine,
// golang-lru from inside Add.
type evictLog struct {
	mu   sync.Mutex
	keys []string
}

func (l *evictLog) record(key string, _ []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
}

func (l *evictLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}

// runCacheContract checks the behavior every provider must share.
func runCacheContract(t *testing.T, open opener) {
	const url = "https://hts.example/file?filename=Chapter%201"

	t.Run("miss then hit", func(t *testing.T) {
		c := open(t, 10, nil)
		if val, ok := c.Get(url); ok || val != nil {
			t.Fatalf("Expected miss on empty cache, got %q", val)
		}
		c.Set(url, []byte(`{"etag":"\"v1\""}`))
		val, ok := c.Get(url)
		if !ok || string(val) != `{"etag":"\"v1\""}` {
			t.Fatalf("Expected stored validators, got %q (ok=%v)", val, ok)
		}
	})

	t.Run("overwrite keeps one entry", func(t *testing.T) {
		c := open(t, 10, nil)
		c.Set(url, []byte("v1"))
		c.Set(url, []byte("v2"))
		if val, _ := c.Get(url); string(val) != "v2" {
			t.Fatalf("Expected v2, got %q", val)
		}
		if c.Len() != 1 {
			t.Fatalf("Expected Len 1, got %d", c.Len())
		}
	})

	t.Run("delete", func(t *testing.T) {
		c := open(t, 10, nil)
		c.Set("a", []byte("1"))
		c.Set("b", []byte("2"))
		c.Delete("a")
		c.Delete("never-set")
		if c.Contains("a") {
			t.Fatal("Expected a to be gone")
		}
		if !c.Contains("b") || c.Len() != 1 {
			t.Fatalf("Expected only b to remain, Len=%d", c.Len())
		}
	})

	t.Run("least recently used is evicted", func(t *testing.T) {
		log := &evictLog{}
		c := open(t, 2, log.record)
		c.Set("a", []byte("1"))
		c.Set("b", []byte("2"))
		c.Set("c", []byte("3"))

		if got := log.snapshot(); len(got) != 1 || got[0] != "a" {
			t.Fatalf("Expected eviction of a, got %v", got)
		}
		if c.Contains("a") || !c.Contains("b") || !c.Contains("c") {
			t.Fatal("Expected b and c to survive the eviction of a")
		}
	})

	t.Run("get promotes an entry", func(t *testing.T) {
		c := open(t, 2, nil)
		c.Set("a", []byte("1"))
		c.Set("b", []byte("2"))
		_, _ = c.Get("a")
		c.Set("c", []byte("3"))

		if c.Contains("b") {
			t.Fatal("Expected b to be evicted after a was read")
		}
		if !c.Contains("a") || !c.Contains("c") {
			t.Fatal("Expected a and c to remain")
		}
	})
}
