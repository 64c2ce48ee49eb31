package apperrors

import (
	"fmt"
	"net/http"
)

// ErrInvalidJob is returned when a job definition cannot be compiled.
type ErrInvalidJob struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ErrInvalidJob) Error() string {
	return fmt.Sprintf("invalid job %s: %s", e.Field, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidJob) Is(target error) bool {
	_, ok := target.(*ErrInvalidJob)
	return ok
}

// NewInvalidJobError creates a new ErrInvalidJob.
func NewInvalidJobError(field, reason string) *ErrInvalidJob {
	return &ErrInvalidJob{Field: field, Reason: reason}
}

// ErrHTTPStatus is returned for a non-2xx response. It is retryable.
type ErrHTTPStatus struct {
	URL        string
	StatusCode int
	// Title is the <title> of an HTML error page, when the server sent one.
	Title string
}

// Error implements the error interface.
func (e *ErrHTTPStatus) Error() string {
	msg := fmt.Sprintf("unexpected status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	if e.Title != "" {
		msg += fmt.Sprintf(" (%q)", e.Title)
	}
	return msg
}

// Is allows for error checking with errors.Is().
func (e *ErrHTTPStatus) Is(target error) bool {
	_, ok := target.(*ErrHTTPStatus)
	return ok
}

// ErrTooManyRedirects is returned when a redirect chain exceeds the configured limit.
type ErrTooManyRedirects struct {
	URL string
	Max int
}

// Error implements the error interface.
func (e *ErrTooManyRedirects) Error() string {
	return fmt.Sprintf("stopped after %d redirects at %s", e.Max, e.URL)
}

// Is allows for error checking with errors.Is().
func (e *ErrTooManyRedirects) Is(target error) bool {
	_, ok := target.(*ErrTooManyRedirects)
	return ok
}

// ErrFetchFailed is the per-identifier failure recorded once every attempt is exhausted.
// It never aborts a batch.
type ErrFetchFailed struct {
	ID       int
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *ErrFetchFailed) Error() string {
	return fmt.Sprintf("fetch of identifier %d failed after %d attempt(s): %v", e.ID, e.Attempts, e.Err)
}

// Unwrap returns the error of the last attempt.
func (e *ErrFetchFailed) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrFetchFailed) Is(target error) bool {
	_, ok := target.(*ErrFetchFailed)
	return ok
}

// ErrLocalIO wraps a failure of the local filesystem (disk full, permission denied, ...).
// Local I/O errors are fatal for a run: no later write could succeed either.
type ErrLocalIO struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ErrLocalIO) Error() string {
	return fmt.Sprintf("local %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying filesystem error.
func (e *ErrLocalIO) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrLocalIO) Is(target error) bool {
	_, ok := target.(*ErrLocalIO)
	return ok
}

// NewLocalIOError creates a new ErrLocalIO.
func NewLocalIOError(op, path string, err error) *ErrLocalIO {
	return &ErrLocalIO{Op: op, Path: path, Err: err}
}

// ErrSetup is returned when a run cannot start, e.g. the output directory cannot be created.
type ErrSetup struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *ErrSetup) Error() string {
	return fmt.Sprintf("setup failed (%s): %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *ErrSetup) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrSetup) Is(target error) bool {
	_, ok := target.(*ErrSetup)
	return ok
}
