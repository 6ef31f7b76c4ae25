package model

import "time"

// Scored is the outcome of scoring one task.
type Scored struct {
	// Record is what is (or would be) written to the audit log.
	Record ScoreRecord
	// SLA is the response time of the record's tier; DueAt is the deadline
	// it implies from the record timestamp.
	SLA   time.Duration
	DueAt time.Time
	// Adjusted reports that the clamp policy changed a factor.
	Adjusted bool
}
