package cache

import (
	"testing"
	"time"
)

func openMemory(t *testing.T, size int, onEvict EvictCallback) Cache {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: size, TTL: time.Hour, OnEvict: onEvict})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_Contract(t *testing.T) {
	runCacheContract(t, openMemory)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))
	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected entry to expire")
	}
}

func TestMemoryCache_DeleteNotifies(t *testing.T) {
	log := &evictLog{}
	c := openMemory(t, 10, log.record)

	c.Set("k", []byte("v"))
	c.Delete("k")

	if got := log.snapshot(); len(got) != 1 || got[0] != "k" {
		t.Fatalf("Expected delete to be reported through OnEvict, got %v", got)
	}
}
