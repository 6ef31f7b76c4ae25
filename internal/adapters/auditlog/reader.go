package auditlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/okian/taskprio/internal/domain/summary"
)

// Reader lists and loads audit log files.
type Reader interface {
	// ReadAll returns every audit log in the directory, newest first.
	// It returns summary.ErrNoLogsFound when there are none.
	ReadAll(ctx context.Context) ([]summary.File, error)
}

// DirReader implements Reader over a single directory, non-recursively.
type DirReader struct {
	dir string
}

// NewDirReader creates a reader for dir.
func NewDirReader(dir string) *DirReader {
	return &DirReader{dir: dir}
}

// List returns the names of audit log files, newest first. The fixed-width
// timestamp in the name makes reverse lexical order chronological.
func (d *DirReader) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", summary.ErrNoLogsFound, d.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadLogs, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, ok := ParseFileName(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", summary.ErrNoLogsFound, d.dir)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// ReadAll loads every audit log, newest first. A file that cannot be read
// is returned with no data so that it is counted as malformed rather than
// failing the whole summary.
func (d *DirReader) ReadAll(ctx context.Context) ([]summary.File, error) {
	names, err := d.List(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]summary.File, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(d.dir, name))
		if err != nil {
			data = nil
		}
		files = append(files, summary.File{Name: name, Data: data})
	}
	return files, nil
}
