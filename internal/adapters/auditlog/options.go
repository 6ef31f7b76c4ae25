package auditlog

import (
	"os"
	"time"
)

// Option applies a configuration option to the FileRecorder.
type Option func(*FileRecorder)

// WithClock sets the time source used for the run timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *FileRecorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithToken sets the generator for the process-unique filename suffix.
// Tokens must be eight lowercase hex characters to be discoverable.
func WithToken(token func() string) Option {
	return func(r *FileRecorder) {
		if token != nil {
			r.token = token
		}
	}
}

// WithFileMode sets the permission bits for new log files.
func WithFileMode(mode os.FileMode) Option {
	return func(r *FileRecorder) {
		if mode != 0 {
			r.fileMode = mode
		}
	}
}
