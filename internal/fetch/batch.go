package fetch

import (
	"context"
	"os"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/config"
	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// Stream walks j.Start..j.End in ascending order, exactly once each, and emits
// every result as soon as it is known. A fatal error is emitted as the last
// item with Err set. The channel is closed when the walk ends.
func (f *Fetcher) Stream(ctx context.Context, j *job.Job) <-chan models.StreamResult[models.FetchResult] {
	ch := make(chan models.StreamResult[models.FetchResult])

	go func() {
		defer close(ch)
		logger := config.GetLogger()

		if err := os.MkdirAll(j.OutputDir, 0o755); err != nil {
			sendResult(ctx, ch, models.StreamResult[models.FetchResult]{Err: &apperrors.ErrSetup{
				Step: "create output directory",
				Err:  apperrors.NewLocalIOError("mkdir", j.OutputDir, err),
			}})
			return
		}
		if n := removeStaleParts(j.OutputDir); n > 0 {
			logger.Info().Int("count", n).Str("dir", j.OutputDir).Msg("Removed leftovers of an interrupted run")
		}

		logger.Info().
			Str("job", j.Name).
			Int("start", j.Start).
			Int("end", j.End).
			Str("dir", j.OutputDir).
			Msg("Starting batch")

		for id := j.Start; ; id++ {
			if err := ctx.Err(); err != nil {
				sendResult(ctx, ch, models.StreamResult[models.FetchResult]{Err: err})
				return
			}
			result, err := f.FetchOne(ctx, j, id)
			if err != nil {
				sendResult(ctx, ch, models.StreamResult[models.FetchResult]{Value: result, Err: err})
				return
			}
			if !sendResult(ctx, ch, models.StreamResult[models.FetchResult]{Value: result}) {
				return
			}
			// Checked after the send so id never steps past End.
			if id == j.End {
				return
			}
		}
	}()

	return ch
}

// Run fetches the whole job and returns its summary. Per-identifier failures
// are counted, not returned; the error is non-nil for setup failures, fatal
// local I/O errors and cancellation. The summary is returned in every case
// with what was done so far.
func (f *Fetcher) Run(ctx context.Context, j *job.Job) (*models.Summary, error) {
	summary := &models.Summary{}

	var runErr error
	for item := range f.Stream(ctx, j) {
		if item.Err != nil {
			runErr = item.Err
			break
		}
		summary.Add(item.Value)
	}
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	if n, err := CountFiles(j.OutputDir); err == nil {
		summary.FilesPresent = n
	} else if runErr == nil {
		runErr = err
	}

	logger := config.GetLogger()
	event := logger.Info()
	if runErr != nil {
		event = logger.Warn().Err(runErr)
	}
	event.
		Str("job", j.Name).
		Int("saved", summary.Saved).
		Int("empty", summary.Empty).
		Int("failed", summary.Failed).
		Int("unchanged", summary.Unchanged).
		Int("skipped", summary.Skipped).
		Int("files_present", summary.FilesPresent).
		Msg("Batch finished")

	return summary, runErr
}

// sendResult delivers item unless ctx ends first. It reports whether item was delivered.
func sendResult(ctx context.Context, ch chan<- models.StreamResult[models.FetchResult], item models.StreamResult[models.FetchResult]) bool {
	select {
	case ch <- item:
		return true
	case <-ctx.Done():
		return false
	}
}
