package client

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		ClientTimeout: "10s",
		UserAgent:     "batchfetch-test-browser",
		MaxRedirects:  3,
	}
}

func TestNew_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/document.pdf", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/document.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdfBytes)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	for _, kind := range []models.ClientKind{models.ClientStandard, models.ClientBrowser} {
		t.Run(string(kind), func(t *testing.T) {
			c := New(testConfig(), kind)
			resp, err := c.Get(server.URL + "/start")
			if err != nil {
				t.Fatalf("Expected redirect chain to be followed, got: %v", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if string(body) != string(pdfBytes) {
				t.Errorf("Expected document body after redirects, got %q", body)
			}
			if resp.Request.URL.Path != "/document.pdf" {
				t.Errorf("Expected final URL /document.pdf, got %s", resp.Request.URL.Path)
			}
		})
	}
}

func TestNew_RedirectLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	c := New(testConfig(), models.ClientStandard)
	_, err := c.Get(server.URL + "/loop")
	if err == nil {
		t.Fatal("Expected error for an endless redirect chain")
	}
	if !errors.Is(err, &apperrors.ErrTooManyRedirects{}) {
		t.Errorf("Expected ErrTooManyRedirects, got: %v", err)
	}
}

func TestNew_UserAgentPerKind(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := New(testConfig(), models.ClientBrowser).Get(server.URL)
	if err != nil {
		t.Fatalf("browser request failed: %v", err)
	}
	resp.Body.Close()
	if seen != "batchfetch-test-browser" {
		t.Errorf("Expected browser User-Agent, got %q", seen)
	}

	resp, err = New(testConfig(), models.ClientStandard).Get(server.URL)
	if err != nil {
		t.Fatalf("standard request failed: %v", err)
	}
	resp.Body.Close()
	if !strings.HasPrefix(seen, "Go-http-client") {
		t.Errorf("Expected Go default User-Agent for standard client, got %q", seen)
	}
}

func TestNew_InvalidProxyFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig()
	cfg.ProxyConnectionString = "://not a url"

	resp, err := New(cfg, models.ClientStandard).Get(server.URL)
	if err != nil {
		t.Fatalf("Expected request to succeed without proxy, got: %v", err)
	}
	resp.Body.Close()
}

func TestNew_TimeoutFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ClientTimeout = "1500ms"
	if got := New(cfg, models.ClientStandard).Timeout.Milliseconds(); got != 1500 {
		t.Errorf("Expected 1500ms timeout, got %dms", got)
	}

	cfg.ClientTimeout = "nonsense"
	if got := New(cfg, models.ClientStandard).Timeout.Seconds(); got != 30 {
		t.Errorf("Expected default 30s timeout for invalid value, got %.0fs", got)
	}
}
