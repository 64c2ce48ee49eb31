package cache

// instrumentedCache counts lookups of the wrapped cache under its group.
// Evictions are counted by the callback installed in New.
type instrumentedCache struct {
	Cache
	group string
}

// newInstrumentedCache wraps inner and registers its entries gauge. The gauge
// reads inner.Len() at scrape time since Redis expires fields on its own.
func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	registerEntriesCollector(group, inner.Len)
	return &instrumentedCache{Cache: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.Cache.Get(key)
	counter := MissesTotal
	if ok {
		counter = HitsTotal
	}
	counter.WithLabelValues(c.group).Inc()
	return val, ok
}

func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.group)
	return c.Cache.Close()
}
