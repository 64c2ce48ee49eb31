// Package progress prints the operator-facing progress of a batch.
package progress

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/job"
	"github.com/Belphemur/BatchFetch/internal/models"
)

// Console writes one progress line per identifier and one result line per outcome.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole writes to out, usually os.Stdout.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// OnStart prints "[<id>/<end>] Downloading <label> <id>...".
func (c *Console) OnStart(j *job.Job, target models.FetchTarget) {
	c.printf("[%d/%d] Downloading %s %d...\n", target.ID, j.End, j.Label, target.ID)
}

// OnResult prints the outcome of the identifier announced by OnStart.
func (c *Console) OnResult(_ *job.Job, result models.FetchResult) {
	c.printf("%s\n", ResultLine(result))
}

// Summary prints the trailing line of a run.
func (c *Console) Summary(j *job.Job, s *models.Summary) {
	c.printf("Done: %d files present in %s (saved=%d, empty=%d, failed=%d, unchanged=%d, skipped=%d)\n",
		s.FilesPresent, j.OutputDir, s.Saved, s.Empty, s.Failed, s.Unchanged, s.Skipped)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// ResultLine renders the result line for result.
func ResultLine(result models.FetchResult) string {
	switch result.Status {
	case models.StatusSaved:
		return "Saved"
	case models.StatusEmpty:
		return "Empty — removed"
	case models.StatusUnchanged:
		return "Unchanged — kept"
	case models.StatusSkipped:
		return "Exists — skipped"
	case models.StatusFailed:
		if reason := failureReason(result.Err); reason != "" {
			return "Failed: " + reason
		}
		return "Failed"
	default:
		return result.Status.String()
	}
}

// failureReason drops the identifier and attempt count, which the progress
// line already shows, and keeps the cause of the last attempt.
func failureReason(err error) string {
	if err == nil {
		return ""
	}
	var fetchErr *apperrors.ErrFetchFailed
	if errors.As(err, &fetchErr) && fetchErr.Err != nil {
		return fmt.Sprintf("%v (after %d attempts)", fetchErr.Err, fetchErr.Attempts)
	}
	return err.Error()
}
