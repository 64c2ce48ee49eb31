package models

import "testing"

func TestSummary_Add(t *testing.T) {
	var s Summary
	for _, status := range []FetchStatus{StatusSaved, StatusSaved, StatusEmpty, StatusSaved, StatusSaved, StatusFailed, StatusUnknown} {
		s.Add(FetchResult{Status: status})
	}

	if s.Saved != 4 {
		t.Errorf("Expected 4 saved, got %d", s.Saved)
	}
	if s.Empty != 1 {
		t.Errorf("Expected 1 empty, got %d", s.Empty)
	}
	if s.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", s.Failed)
	}
	if s.Total() != 6 {
		t.Errorf("Expected total 6 (unknown results are not counted), got %d", s.Total())
	}
	if s.Count(StatusSaved) != 4 || s.Count(StatusUnknown) != 0 {
		t.Errorf("Count mismatch: saved=%d unknown=%d", s.Count(StatusSaved), s.Count(StatusUnknown))
	}
}

func TestFetchResult_Kept(t *testing.T) {
	tests := []struct {
		status FetchStatus
		want   bool
	}{
		{StatusSaved, true},
		{StatusUnchanged, true},
		{StatusSkipped, true},
		{StatusEmpty, false},
		{StatusFailed, false},
		{StatusUnknown, false},
	}

	for _, tt := range tests {
		if got := (FetchResult{Status: tt.status}).Kept(); got != tt.want {
			t.Errorf("FetchResult{Status: %v}.Kept() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
