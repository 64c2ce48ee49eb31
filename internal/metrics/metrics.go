package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// Fetch metrics. They are labelled by profile rather than "job" because the
// Pushgateway reserves the job label for the grouping key.
var (
	ResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_results_total",
			Help: "Total number of resolved identifiers by outcome.",
		},
		[]string{"profile", "status"},
	)

	AttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_attempts_total",
			Help: "Total number of HTTP attempts, retries included.",
		},
		[]string{"profile"},
	)

	BytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetch_bytes_total",
			Help: "Total number of document bytes written to disk.",
		},
		[]string{"profile"},
	)

	Duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fetch_duration_seconds",
			Help:    "Time spent resolving one identifier, retries included.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"profile"},
	)

	FilesPresent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fetch_files_present",
			Help: "Number of documents in the output directory after the last run.",
		},
		[]string{"profile"},
	)
)

func init() {
	prometheus.MustRegister(
		ResultsTotal,
		AttemptsTotal,
		BytesTotal,
		Duration,
		FilesPresent,
	)
}

// Observer records fetch results into the package metrics.
type Observer struct{}

// NewObserver returns an Observer for the fetcher.
func NewObserver() *Observer {
	return &Observer{}
}

func (*Observer) OnStart(*job.Job, models.FetchTarget) {}

func (*Observer) OnResult(j *job.Job, result models.FetchResult) {
	ResultsTotal.WithLabelValues(j.Name, result.Status.String()).Inc()
	if result.Attempts > 0 {
		AttemptsTotal.WithLabelValues(j.Name).Add(float64(result.Attempts))
	}
	if result.Status == models.StatusSaved {
		BytesTotal.WithLabelValues(j.Name).Add(float64(result.Bytes))
	}
	Duration.WithLabelValues(j.Name).Observe(result.Duration.Seconds())
}

// RecordSummary publishes the end-of-run gauges.
func RecordSummary(j *job.Job, s *models.Summary) {
	FilesPresent.WithLabelValues(j.Name).Set(float64(s.FilesPresent))
}
