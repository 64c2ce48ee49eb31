package cache

import (
	"encoding/json"
	"net/http"
)

// Validators are the HTTP cache validators a server returned for a document.
type Validators struct {
	ETag         string `json:"etag,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
}

// ValidatorsFromHeader reads ETag and Last-Modified from a response header.
func ValidatorsFromHeader(h http.Header) Validators {
	return Validators{
		ETag:         h.Get("ETag"),
		LastModified: h.Get("Last-Modified"),
	}
}

// IsZero reports whether no validator is set.
func (v Validators) IsZero() bool {
	return v.ETag == "" && v.LastModified == ""
}

// Apply turns req into a conditional request.
func (v Validators) Apply(req *http.Request) {
	if v.ETag != "" {
		req.Header.Set("If-None-Match", v.ETag)
	}
	if v.LastModified != "" {
		req.Header.Set("If-Modified-Since", v.LastModified)
	}
}

// ValidatorStore keeps Validators per source URL on top of a Cache.
type ValidatorStore struct {
	cache Cache
}

// NewValidatorStore stores validators in c.
func NewValidatorStore(c Cache) *ValidatorStore {
	return &ValidatorStore{cache: c}
}

// Get returns the validators recorded for url.
func (s *ValidatorStore) Get(url string) (Validators, bool) {
	raw, ok := s.cache.Get(url)
	if !ok {
		return Validators{}, false
	}
	var v Validators
	if err := json.Unmarshal(raw, &v); err != nil || v.IsZero() {
		return Validators{}, false
	}
	return v, true
}

// Put records v for url. Zero validators remove the entry.
func (s *ValidatorStore) Put(url string, v Validators) {
	if v.IsZero() {
		s.cache.Delete(url)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(url, raw)
}

// Forget drops what is known about url.
func (s *ValidatorStore) Forget(url string) {
	s.cache.Delete(url)
}

// Close closes the underlying cache.
func (s *ValidatorStore) Close() error {
	return s.cache.Close()
}
