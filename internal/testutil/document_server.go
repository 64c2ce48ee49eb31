package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// DocumentHandler answers one request for identifier id. attempt is 1 for the
// first request made for id, 2 for the second, and so on.
type DocumentHandler func(w http.ResponseWriter, r *http.Request, id, attempt int)

// DocumentServer is an httptest server serving documents at /doc?id=<n> and
// counting the requests made for each identifier.
type DocumentServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests map[int]int
	order    []int
}

// NewDocumentServer starts a server delegating to handler. It is closed when the test ends.
func NewDocumentServer(t *testing.T, handler DocumentHandler) *DocumentServer {
	t.Helper()
	s := &DocumentServer{requests: make(map[int]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("id"))
		if err != nil {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests[id]++
		attempt := s.requests[id]
		s.order = append(s.order, id)
		s.mu.Unlock()

		handler(w, r, id, attempt)
	}))
	t.Cleanup(s.Close)
	return s
}

// URLTemplate returns a job URL template pointing at the server.
func (s *DocumentServer) URLTemplate() string {
	return s.URL + "/doc?id={{.ID}}"
}

// Requests returns how many requests were made for id.
func (s *DocumentServer) Requests(id int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

// Order returns the identifiers in the order they were requested.
func (s *DocumentServer) Order() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.order...)
}

// ServePDF is a DocumentHandler answering every identifier with PDFBody.
func ServePDF(w http.ResponseWriter, _ *http.Request, id, _ int) {
	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(PDFBody(id))
}
