package models

// Summary aggregates the results of one batch run
type Summary struct {
	Saved     int `json:"saved"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`

	// FilesPresent is the number of document files found in the output directory after the run.
	FilesPresent int `json:"filesPresent"`
}

// Add records a single result
func (s *Summary) Add(result FetchResult) {
	switch result.Status {
	case StatusSaved:
		s.Saved++
	case StatusEmpty:
		s.Empty++
	case StatusFailed:
		s.Failed++
	case StatusUnchanged:
		s.Unchanged++
	case StatusSkipped:
		s.Skipped++
	}
}

// Count returns how many results ended with the given status
func (s *Summary) Count(status FetchStatus) int {
	switch status {
	case StatusSaved:
		return s.Saved
	case StatusEmpty:
		return s.Empty
	case StatusFailed:
		return s.Failed
	case StatusUnchanged:
		return s.Unchanged
	case StatusSkipped:
		return s.Skipped
	default:
		return 0
	}
}

// Total returns the number of identifiers processed
func (s *Summary) Total() int {
	return s.Saved + s.Empty + s.Failed + s.Unchanged + s.Skipped
}
