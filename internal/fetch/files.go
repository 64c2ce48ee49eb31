package fetch

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Belphemur/BatchFetch/internal/apperrors"
	"github.com/Belphemur/BatchFetch/internal/retry"
)

// partSuffix marks in-flight downloads. Temp files are hidden and live next to
// their destination so the final rename stays on one filesystem.
const partSuffix = ".part"

// renameFunc is swapped in tests to simulate a failing rename.
var renameFunc = os.Rename

// localWriter tags every write failure as a permanent local I/O error, so a
// full disk stops the batch instead of being retried like a network error.
type localWriter struct {
	w    io.Writer
	path string
}

func (lw *localWriter) Write(p []byte) (int, error) {
	n, err := lw.w.Write(p)
	if err != nil {
		return n, retry.Permanent(apperrors.NewLocalIOError("write", lw.path, err))
	}
	return n, nil
}

// download is a body written to a temp file that has not been committed yet.
type download struct {
	tmpPath string
	dest    string
	size    int64
}

// writeTemp streams body into a hidden temp file in the destination directory.
// Read errors come back as is and stay retryable; local errors are permanent.
func writeTemp(dest string, body io.Reader) (*download, error) {
	dir, name := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*"+partSuffix)
	if err != nil {
		return nil, retry.Permanent(apperrors.NewLocalIOError("create", dest, err))
	}
	d := &download{tmpPath: tmp.Name(), dest: dest}

	n, copyErr := io.Copy(&localWriter{w: tmp, path: d.tmpPath}, body)
	closeErr := tmp.Close()
	if copyErr != nil {
		d.discard()
		return nil, copyErr
	}
	if closeErr != nil {
		d.discard()
		return nil, retry.Permanent(apperrors.NewLocalIOError("close", d.tmpPath, closeErr))
	}
	d.size = n
	return d, nil
}

// commit renames the temp file onto the destination, replacing any previous version.
func (d *download) commit() error {
	if err := renameFunc(d.tmpPath, d.dest); err != nil {
		d.discard()
		return retry.Permanent(apperrors.NewLocalIOError("rename", d.dest, err))
	}
	return nil
}

// discard drops the temp file. A missing file is not an error.
func (d *download) discard() {
	_ = os.Remove(d.tmpPath)
}

// removeIfExists deletes path, ignoring a missing file.
func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return retry.Permanent(apperrors.NewLocalIOError("remove", path, err))
	}
	return nil
}

// existingSize returns the size of the regular file at path, or -1 when there is none.
func existingSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return -1
	}
	return info.Size()
}

func isPartFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, partSuffix)
}

// CountFiles returns the number of regular, non-hidden files directly in dir.
// Temp files of interrupted downloads are hidden and therefore not counted.
func CountFiles(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperrors.NewLocalIOError("list", dir, err)
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		count++
	}
	return count, nil
}

// removeStaleParts deletes temp files left behind by a killed run. It returns
// how many were removed.
func removeStaleParts(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !isPartFile(e.Name()) {
			continue
		}
		if os.Remove(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}
