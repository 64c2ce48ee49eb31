package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader converts body to UTF-8. The encoding is taken from the
// Content-Type charset parameter when present, otherwise sniffed from the
// content itself (BOM, <meta charset>, heuristics).
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(body, contentType)
}
