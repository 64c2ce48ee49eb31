package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
)

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getGaugeVecValue(gv *prometheus.GaugeVec, labels ...string) float64 {
	g, err := gv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func newTestJob(t *testing.T, name string) *job.Job {
	t.Helper()
	j, err := job.Compile(name, job.Definition{
		URLTemplate:  "https://example.test/{{.ID}}",
		FileTemplate: "doc_{{.ID}}.pdf",
		OutputDir:    t.TempDir(),
		Start:        1,
		End:          2,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return j
}

func TestObserver_OnResult(t *testing.T) {
	j := newTestJob(t, "metrics-observer")
	obs := NewObserver()

	savedBefore := getCounterVecValue(ResultsTotal, j.Name, "saved")
	failedBefore := getCounterVecValue(ResultsTotal, j.Name, "failed")
	attemptsBefore := getCounterVecValue(AttemptsTotal, j.Name)
	bytesBefore := getCounterVecValue(BytesTotal, j.Name)

	obs.OnResult(j, models.FetchResult{Status: models.StatusSaved, Bytes: 2048, Attempts: 1, Duration: time.Second})
	obs.OnResult(j, models.FetchResult{Status: models.StatusFailed, Attempts: 3, Duration: 3 * time.Second})

	if diff := getCounterVecValue(ResultsTotal, j.Name, "saved") - savedBefore; diff != 1 {
		t.Errorf("Expected saved counter to increment by 1, got diff %.0f", diff)
	}
	if diff := getCounterVecValue(ResultsTotal, j.Name, "failed") - failedBefore; diff != 1 {
		t.Errorf("Expected failed counter to increment by 1, got diff %.0f", diff)
	}
	if diff := getCounterVecValue(AttemptsTotal, j.Name) - attemptsBefore; diff != 4 {
		t.Errorf("Expected 4 attempts recorded, got diff %.0f", diff)
	}
	if diff := getCounterVecValue(BytesTotal, j.Name) - bytesBefore; diff != 2048 {
		t.Errorf("Expected 2048 bytes recorded, got diff %.0f", diff)
	}
}

func TestRecordSummary(t *testing.T) {
	j := newTestJob(t, "metrics-summary")

	RecordSummary(j, &models.Summary{Saved: 4, Empty: 1, FilesPresent: 4})

	if got := getGaugeVecValue(FilesPresent, j.Name); got != 4 {
		t.Errorf("Expected files present gauge 4, got %.0f", got)
	}
}

func TestNewHTTPServer(t *testing.T) {
	ResultsTotal.WithLabelValues("metrics-server", "saved").Inc()
	srv := NewHTTPServer("localhost", 9191)

	if srv.Addr != "localhost:9191" {
		t.Errorf("Expected address 'localhost:9191', got '%s'", srv.Addr)
	}
	if srv.Handler == nil {
		t.Fatal("Expected handler to be set")
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fetch_results_total") {
		t.Error("Expected fetch metrics in the exposition")
	}
}

func TestNewHTTPServer_DefaultPort(t *testing.T) {
	srv := NewHTTPServer("0.0.0.0", 0)

	if srv.Addr != "0.0.0.0:9090" {
		t.Errorf("Expected address '0.0.0.0:9090', got '%s'", srv.Addr)
	}
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "push_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	if err := Push(context.Background(), gateway.URL, reg, "run-123"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if method != http.MethodPut {
		t.Errorf("Expected PUT, got %s", method)
	}
	if path != "/metrics/job/batchfetch/run_id/run-123" {
		t.Errorf("Expected grouping path, got %s", path)
	}
	if body == "" {
		t.Error("Expected a non-empty payload")
	}
}

func TestPush_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer gateway.Close()

	if err := Push(context.Background(), gateway.URL, prometheus.NewRegistry(), "run-1"); err == nil {
		t.Fatal("Expected error when the gateway rejects the push")
	}
}
