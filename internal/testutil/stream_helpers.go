package testutil

import (
	"context"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/Belphemur/BatchFetch/internal/models"
)

// CollectResults consumes a result stream. It returns the results received
// before the first error together with that error.
// This is a test helper and should not be used in production code.
func CollectResults(ctx context.Context, stream <-chan models.StreamResult[models.FetchResult]) ([]models.FetchResult, error) {
	var results []models.FetchResult
	for {
		select {
		case item, ok := <-stream:
			if !ok {
				return results, nil
			}
			if item.Err != nil {
				return results, item.Err
			}
			results = append(results, item.Value)
		case <-ctx.Done():
			return results, ctx.Err()
		}
	}
}

// ListFiles returns the sorted names of all entries in dir, hidden ones included.
func ListFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// VisibleFiles is ListFiles without hidden entries.
func VisibleFiles(t *testing.T, dir string) []string {
	t.Helper()
	var names []string
	for _, name := range ListFiles(t, dir) {
		if !strings.HasPrefix(name, ".") {
			names = append(names, name)
		}
	}
	return names
}
