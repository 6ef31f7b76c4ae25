package summary

import "errors"

// Sentinel kinds for summary errors.
var (
	ErrInvalidLimit    = errors.New("invalid summary limit")
	ErrNoLogsFound     = errors.New("no audit logs found")
	ErrMalformedRecord = errors.New("malformed score record")
)
