package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestValidatorStore(t *testing.T) *ValidatorStore {
	t.Helper()
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := NewValidatorStore(c)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestValidatorStore_PutGet(t *testing.T) {
	s := newTestValidatorStore(t)
	url := "https://example.test/Chapter_1.pdf"

	if _, ok := s.Get(url); ok {
		t.Fatal("Expected no validators before Put")
	}

	want := Validators{ETag: `"abc"`, LastModified: "Mon, 02 Jan 2006 15:04:05 GMT"}
	s.Put(url, want)

	got, ok := s.Get(url)
	if !ok {
		t.Fatal("Expected validators after Put")
	}
	if got != want {
		t.Fatalf("Expected %+v, got %+v", want, got)
	}
}

func TestValidatorStore_PutZeroForgets(t *testing.T) {
	s := newTestValidatorStore(t)
	url := "https://example.test/a.pdf"

	s.Put(url, Validators{ETag: `"1"`})
	s.Put(url, Validators{})

	if _, ok := s.Get(url); ok {
		t.Fatal("Expected zero validators to remove the entry")
	}
}

func TestValidatorStore_Forget(t *testing.T) {
	s := newTestValidatorStore(t)
	url := "https://example.test/a.pdf"

	s.Put(url, Validators{ETag: `"1"`})
	s.Forget(url)

	if _, ok := s.Get(url); ok {
		t.Fatal("Expected validators to be forgotten")
	}
}

func TestValidatorStore_IgnoresGarbage(t *testing.T) {
	c, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("u", []byte("not json"))
	if _, ok := NewValidatorStore(c).Get("u"); ok {
		t.Fatal("Expected undecodable entry to be treated as a miss")
	}
}

func TestValidatorsFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set("ETag", `W/"xyz"`)
	h.Set("Last-Modified", "Tue, 03 Jan 2006 10:00:00 GMT")

	v := ValidatorsFromHeader(h)
	if v.ETag != `W/"xyz"` {
		t.Errorf("Expected ETag W/\"xyz\", got %q", v.ETag)
	}
	if v.LastModified != "Tue, 03 Jan 2006 10:00:00 GMT" {
		t.Errorf("Expected Last-Modified, got %q", v.LastModified)
	}
	if !ValidatorsFromHeader(http.Header{}).IsZero() {
		t.Error("Expected empty header to yield zero validators")
	}
}

func TestValidators_Apply(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://example.test/a.pdf", nil)
	Validators{ETag: `"e"`, LastModified: "Mon, 02 Jan 2006 15:04:05 GMT"}.Apply(req)

	if got := req.Header.Get("If-None-Match"); got != `"e"` {
		t.Errorf("Expected If-None-Match \"e\", got %q", got)
	}
	if got := req.Header.Get("If-Modified-Since"); got != "Mon, 02 Jan 2006 15:04:05 GMT" {
		t.Errorf("Expected If-Modified-Since, got %q", got)
	}

	plain := httptest.NewRequest(http.MethodGet, "https://example.test/b.pdf", nil)
	Validators{}.Apply(plain)
	if plain.Header.Get("If-None-Match") != "" || plain.Header.Get("If-Modified-Since") != "" {
		t.Error("Expected zero validators to leave the request unconditional")
	}
}
