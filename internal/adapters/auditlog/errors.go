package auditlog

import "errors"

// Sentinel kinds for audit log errors.
var (
	ErrCreateLog   = errors.New("create audit log failed")
	ErrWriteRecord = errors.New("write score record failed")
	ErrReadLogs    = errors.New("read audit logs failed")
)
