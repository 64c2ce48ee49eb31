package models

import "strings"

// FetchStatus is the terminal outcome of fetching a single identifier
type FetchStatus int

const (
	StatusUnknown FetchStatus = iota
	StatusSaved
	StatusEmpty     // 200 with an empty body, nothing kept on disk
	StatusFailed    // all attempts exhausted
	StatusUnchanged // 304 on a conditional request, existing file kept
	StatusSkipped   // skip-existing enabled and a non-empty file was already present
)

// String returns the string representation of the status
func (s FetchStatus) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	case StatusUnchanged:
		return "unchanged"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ParseFetchStatus converts a status string to FetchStatus
func ParseFetchStatus(status string) FetchStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "saved":
		return StatusSaved
	case "empty":
		return StatusEmpty
	case "failed":
		return StatusFailed
	case "unchanged":
		return StatusUnchanged
	case "skipped":
		return StatusSkipped
	default:
		return StatusUnknown
	}
}

// AllStatuses lists every known terminal status, in reporting order.
func AllStatuses() []FetchStatus {
	return []FetchStatus{StatusSaved, StatusEmpty, StatusFailed, StatusUnchanged, StatusSkipped}
}

// MarshalJSON implements json.Marshaler interface
func (s FetchStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (s *FetchStatus) UnmarshalJSON(data []byte) error {
	*s = ParseFetchStatus(strings.Trim(string(data), `"`))
	return nil
}
