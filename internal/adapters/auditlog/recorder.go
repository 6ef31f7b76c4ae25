// Package auditlog persists score records as timestamped JSON files and reads
// them back for summaries.
//
// Every process run writes to its own file named
// task-prioritization-<YYYYMMDD>-<HHMMSS>-<token>.json, where the timestamp is
// the run start in UTC and token is a random eight-character hex string.
// Records are stored one compact JSON object per line. The first write
// publishes the file whole: it is linked into place from a temporary file,
// which fails if the name is taken. Later writes in the same run append their
// lines and are truncated back if they fail, so a record is either complete
// in the file or absent. A reader racing an append may see an incomplete last
// line; summaries skip it.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/taskprio/internal/domain/model"
)

const (
	filePrefix      = "task-prioritization-"
	fileExt         = ".json"
	timestampLayout = "20060102-150405"
	tokenLength     = 8
	createAttempts  = 3
	defaultFileMode = 0o644
	dirMode         = 0o755
)

// fileNamePattern matches both legacy names without a token and current ones.
var fileNamePattern = regexp.MustCompile(`^task-prioritization-(\d{8}-\d{6})(?:-[0-9a-f]{8})?\.json$`)

// FileName returns the log file name for a run started at t. An empty token
// yields the legacy second-resolution name.
func FileName(t time.Time, token string) string {
	name := filePrefix + t.UTC().Format(timestampLayout)
	if token != "" {
		name += "-" + token
	}
	return name + fileExt
}

// ParseFileName reports whether name is an audit log and returns its run time.
func ParseFileName(name string) (time.Time, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(timestampLayout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}

// Recorder appends score records to durable storage.
type Recorder interface {
	// Append persists records in order. Either all records are persisted or
	// none are.
	Append(ctx context.Context, records ...model.ScoreRecord) error
}

// FileRecorder implements Recorder with one append-only JSON lines file per
// process run. Only counters are kept in memory.
type FileRecorder struct {
	mu sync.Mutex

	dir      string
	now      func() time.Time
	token    func() string
	fileMode os.FileMode

	runAt   time.Time
	path    string
	size    int64
	count   int
	written int64
}

// NewFileRecorder creates a recorder writing under dir. The run timestamp is
// taken when the recorder is created; no file exists until the first Append.
func NewFileRecorder(dir string, opts ...Option) *FileRecorder {
	r := &FileRecorder{
		dir:      dir,
		now:      time.Now,
		token:    randomToken,
		fileMode: defaultFileMode,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.runAt = r.now()
	return r
}

// Dir returns the audit directory.
func (r *FileRecorder) Dir() string { return r.dir }

// Path returns the file written by this run, or "" before the first Append.
func (r *FileRecorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Count returns the number of records written by this run.
func (r *FileRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// BytesWritten returns the bytes this run has written to its file.
func (r *FileRecorder) BytesWritten() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Append persists records to this run's file, creating it on first use.
func (r *FileRecorder) Append(ctx context.Context, records ...model.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeLines(records)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteRecord, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.path == "" {
		path, err := r.create(data)
		if err != nil {
			return err
		}
		r.path = path
	} else if err := r.appendLines(data); err != nil {
		return err
	}

	r.size += int64(len(data))
	r.written += int64(len(data))
	r.count += len(records)
	return nil
}

// encodeLines renders each record as one compact JSON line.
func encodeLines(records []model.ScoreRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func (r *FileRecorder) create(data []byte) (string, error) {
	if err := os.MkdirAll(r.dir, dirMode); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateLog, err)
	}
	tmpPath, err := r.writeTemp(data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCreateLog, err)
	}
	defer func() { _ = os.Remove(tmpPath) }()

	for attempt := 0; attempt < createAttempts; attempt++ {
		path := filepath.Join(r.dir, FileName(r.runAt, r.token()))
		err := os.Link(tmpPath, path)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCreateLog, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: no unique file name after %d attempts", ErrCreateLog, createAttempts)
}

// writeTemp writes data to a fresh hidden file in the audit directory.
func (r *FileRecorder) writeTemp(data []byte) (string, error) {
	tmp, err := os.CreateTemp(r.dir, ".task-prioritization-*.tmp")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	if err := writeAndClose(tmp, data); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if err := os.Chmod(tmpPath, r.fileMode); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

// appendLines adds data at the end of the run's file. On failure the file is
// cut back to its previous size.
func (r *FileRecorder) appendLines(data []byte) error {
	f, err := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, r.fileMode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteRecord, err)
	}
	if err := writeAndClose(f, data); err != nil {
		_ = os.Truncate(r.path, r.size)
		return fmt.Errorf("%w: %v", ErrWriteRecord, err)
	}
	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
