package parser

import (
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// maxTitleLength bounds the title so one bad page cannot flood the log.
const maxTitleLength = 120

// IsHTML reports whether contentType describes an HTML document.
func IsHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}

// ErrorPageTitle extracts a short human readable reason from an HTML error
// page: its <title>, or the first <h1> when the title is empty. It returns ""
// when the body is not HTML or has neither element.
func ErrorPageTitle(body io.Reader, contentType string) string {
	if body == nil || !IsHTML(contentType) {
		return ""
	}

	utf8Body, err := NewUTF8Reader(body, contentType)
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(utf8Body)
	if err != nil {
		return ""
	}

	title := normalizeSpace(doc.Find("title").First().Text())
	if title == "" {
		title = normalizeSpace(doc.Find("h1").First().Text())
	}
	return truncate(title, maxTitleLength)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-1]) + "…"
}
