package models

import "time"

// FetchTarget is the source URL and destination path derived from one identifier
type FetchTarget struct {
	ID   int
	URL  string
	Path string
}

// FetchResult is the outcome of resolving a single FetchTarget, including all retry attempts
type FetchResult struct {
	Target   FetchTarget
	Status   FetchStatus
	Bytes    int64         // size of the kept file, 0 unless Saved
	Attempts int           // HTTP attempts made, 0 when no request was issued
	Duration time.Duration // wall time spent on the identifier
	Err      error         // reason for StatusFailed, nil otherwise
}

// Kept reports whether a non-empty file for the target is on disk after this result.
func (r FetchResult) Kept() bool {
	switch r.Status {
	case StatusSaved, StatusUnchanged, StatusSkipped:
		return true
	default:
		return false
	}
}
