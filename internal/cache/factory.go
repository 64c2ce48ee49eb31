package cache

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// ProviderConfig is what a Provider needs to build a cache.
type ProviderConfig struct {
	Size int
	TTL  time.Duration

	// OnEvict sees every key dropped by LRU pressure or Delete.
	OnEvict EvictCallback

	// Logger receives backend errors. Nil drops them.
	Logger Logger

	// KeyPrefix namespaces Redis keys so several profiles can share a database.
	KeyPrefix string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group is the "cache" label of the cache metrics. Empty disables them.
	Group string
}

func (cfg *ProviderConfig) normalize() error {
	if cfg.Size <= 0 {
		return fmt.Errorf("cache: size must be positive, got %d", cfg.Size)
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	return nil
}

// Provider builds a Cache from its config.
type Provider func(cfg ProviderConfig) (Cache, error)

type registry struct {
	sync.RWMutex
	byName map[string]Provider
}

var providers = &registry{byName: map[string]Provider{}}

func (r *registry) lookup(name string) (Provider, bool) {
	r.RLock()
	defer r.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Register adds a provider. Registering a nil provider or a name twice panics.
func Register(name string, p Provider) {
	if p == nil {
		panic("cache: Register provider is nil")
	}
	providers.Lock()
	defer providers.Unlock()
	if _, dup := providers.byName[name]; dup {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers.byName[name] = p
}

// RegisteredProviders lists provider names in sorted order.
func RegisteredProviders() []string {
	providers.RLock()
	defer providers.RUnlock()
	return slices.Sorted(maps.Keys(providers.byName))
}

// New builds a cache with the named provider, instrumented when cfg.Group is set.
func New(name string, cfg ProviderConfig) (Cache, error) {
	p, ok := providers.lookup(name)
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if cfg.Group == "" {
		return p(cfg)
	}
	return instrument(p, cfg)
}

// instrument counts evictions through the OnEvict hook and wraps the result
// so lookups and size are reported too.
func instrument(p Provider, cfg ProviderConfig) (Cache, error) {
	evictions := EvictionsTotal.WithLabelValues(cfg.Group)
	next := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		evictions.Inc()
		if next != nil {
			next(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, cfg.Group), nil
}
