package cache

import "github.com/rs/zerolog"

// EvictCallback is called when an entry is evicted from the cache.
// Redis reports evicted keys with a nil value.
type EvictCallback func(key string, value []byte)

// Cache is a small key-value store with LRU semantics. The fetcher keeps HTTP
// validators in it; the memory provider lives for one process, the redis
// provider survives between runs.
type Cache interface {
	// Get retrieves a value by key. Returns the value and true if found, or nil and false if not.
	Get(key string) ([]byte, bool)

	// Set stores a value with the given key, overwriting any previous value.
	Set(key string, value []byte)

	// Delete removes key. Deleting a missing key is a no-op.
	Delete(key string)

	// Contains checks whether a key exists without affecting LRU ordering.
	Contains(key string) bool

	// Len returns the number of entries currently in the cache.
	Len() int

	// Close releases any resources held by the cache (e.g., network connections).
	Close() error
}

// Logger receives errors from backends that cannot return them through the Cache interface.
type Logger interface {
	Error(msg string, err error)
}

// zerologLogger adapts a zerolog.Logger to Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger reports cache errors through logger at error level.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return zerologLogger{logger: logger}
}

func (l zerologLogger) Error(msg string, err error) {
	l.logger.Error().Err(err).Msg(msg)
}
