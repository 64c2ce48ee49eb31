// Package telemetry reports failed identifiers and fatal errors to Sentry.
package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// Reporter sends events to Sentry. A Reporter built without a DSN is disabled
// and every method is a no-op.
type Reporter struct {
	hub   *sentry.Hub
	runID string
}

// New creates a Reporter. An empty dsn disables reporting.
func New(dsn, environment, runID string) (*Reporter, error) {
	r := &Reporter{runID: runID}
	if dsn == "" {
		return r, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	scope := sentry.NewScope()
	scope.SetTag("run_id", runID)
	r.hub = sentry.NewHub(client, scope)

	logger := config.GetLogger()
	logger.Debug().Str("environment", environment).Msg("Sentry reporting enabled")
	return r, nil
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.hub != nil
}

func (r *Reporter) OnStart(*job.Job, models.FetchTarget) {}

// OnResult reports identifiers that ended as failed.
func (r *Reporter) OnResult(j *job.Job, result models.FetchResult) {
	if !r.Enabled() || result.Status != models.StatusFailed {
		return
	}
	r.hub.CaptureEvent(failureEvent(j, result, r.runID))
}

// CaptureError reports an error that stopped the run.
func (r *Reporter) CaptureError(err error) {
	if !r.Enabled() || err == nil {
		return
	}
	r.hub.CaptureException(err)
}

// Flush waits up to timeout for queued events to be delivered.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.hub.Flush(timeout)
}

// failureEvent describes one failed identifier. Events of the same identifier
// in the same profile are grouped together across runs.
func failureEvent(j *job.Job, result models.FetchResult, runID string) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = sentry.LevelWarning
	event.Message = fmt.Sprintf("%s %d failed after %d attempt(s)", j.Label, result.Target.ID, result.Attempts)
	event.Fingerprint = []string{"fetch-failed", j.Name, strconv.Itoa(result.Target.ID)}

	event.Tags["profile"] = j.Name
	event.Tags["run_id"] = runID
	event.Tags["client"] = string(j.Client)

	fetchContext := sentry.Context{
		"id":       result.Target.ID,
		"url":      result.Target.URL,
		"path":     result.Target.Path,
		"attempts": result.Attempts,
		"duration": result.Duration.String(),
	}
	if result.Err != nil {
		fetchContext["error"] = result.Err.Error()
	}
	var statusErr *apperrors.ErrHTTPStatus
	if errors.As(result.Err, &statusErr) {
		event.Tags["http_status"] = strconv.Itoa(statusErr.StatusCode)
		if statusErr.Title != "" {
			fetchContext["error_page_title"] = statusErr.Title
		}
	}
	event.Contexts["fetch"] = fetchContext
	return event
}
