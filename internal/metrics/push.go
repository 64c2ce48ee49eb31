package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PushJobName is the Pushgateway job of every run.
const PushJobName = "batchfetch"

// Push sends everything gatherer collects to the Pushgateway at url, grouped
// by runID so concurrent runs do not overwrite each other.
func Push(ctx context.Context, url string, gatherer prometheus.Gatherer, runID string) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	pusher := push.New(url, PushJobName).Gatherer(gatherer)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
