// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/taskprio/internal/domain/scoring"
)

// ScoreRecord is one persisted scoring decision. Records are written once
// and never modified.
type ScoreRecord struct {
	TaskID        string          `json:"task_id"`
	TaskName      string          `json:"task_name"`
	Timestamp     time.Time       `json:"timestamp"`
	PriorityScore float64         `json:"priority_score"`
	PriorityLevel scoring.Level   `json:"priority_level"`
	Factors       scoring.Factors `json:"factors"`
	Weights       scoring.Weights `json:"weights"`
}

// NewScoreRecord captures a scoring result at the given instant. The
// timestamp is stored in UTC with second resolution.
func NewScoreRecord(r scoring.Result, at time.Time) ScoreRecord {
	return ScoreRecord{
		TaskID:        r.TaskID,
		TaskName:      r.TaskName,
		Timestamp:     at.UTC().Truncate(time.Second),
		PriorityScore: r.Score,
		PriorityLevel: r.Level,
		Factors:       r.Factors,
		Weights:       r.Weights,
	}
}

// RequiredFields lists the JSON keys a persisted record must carry to be
// included in a summary.
func RequiredFields() []string {
	return []string{"task_id", "task_name", "priority_score", "priority_level", "timestamp"}
}
