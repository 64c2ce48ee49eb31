package client

import (
	"net/http"
	"net/url"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// New creates the HTTP client used for one endpoint. The client kind decides
// how requests are shaped; timeout, proxy and redirect limit come from cfg.
func New(cfg *config.Config, kind models.ClientKind) *http.Client {
	logger := config.GetLogger()

	// Clone DefaultTransport to preserve all its settings (timeouts, connection pooling, HTTP/2, etc.)
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()

	if cfg.ProxyConnectionString != "" {
		proxyURL, err := url.Parse(cfg.ProxyConnectionString)
		if err != nil {
			// Log error but continue without proxy
			logger.Warn().Err(err).Str("proxy", cfg.ProxyConnectionString).Msg("Invalid proxy URL, continuing without proxy")
		} else {
			baseTransport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	var transport http.RoundTripper = baseTransport
	if kind == models.ClientBrowser {
		transport = newBrowserTransport(baseTransport, cfg.UserAgent)
	}

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}

	logger.Debug().
		Str("kind", string(kind)).
		Dur("timeout", cfg.Timeout()).
		Int("max_redirects", maxRedirects).
		Msg("HTTP client configured")

	return &http.Client{
		Timeout:       cfg.Timeout(),
		Transport:     transport,
		CheckRedirect: redirectPolicy(maxRedirects),
	}
}

// redirectPolicy follows redirect chains up to max hops.
func redirectPolicy(max int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return &apperrors.ErrTooManyRedirects{URL: req.URL.String(), Max: max}
		}
		return nil
	}
}
