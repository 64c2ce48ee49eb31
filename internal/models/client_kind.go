package models

import (
	"fmt"
	"strings"
)

// ClientKind selects how requests to an endpoint are shaped. Some document
// hosts reject requests that do not look like they come from a browser while
// others serve plain clients fine.
type ClientKind string

const (
	// ClientStandard uses Go's default transport and User-Agent.
	ClientStandard ClientKind = "standard"
	// ClientBrowser sends a browser User-Agent and negotiates gzip, br and zstd.
	ClientBrowser ClientKind = "browser"
)

// ParseClientKind validates a client kind name. An empty name means ClientStandard.
func ParseClientKind(kind string) (ClientKind, error) {
	switch ClientKind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", ClientStandard:
		return ClientStandard, nil
	case ClientBrowser:
		return ClientBrowser, nil
	default:
		return "", fmt.Errorf("unknown client kind %q (expected %q or %q)", kind, ClientStandard, ClientBrowser)
	}
}
