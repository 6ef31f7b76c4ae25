package model

import "github.com/okian/taskprio/internal/domain/scoring"

// LevelCount is one bucket of a summary's per-tier breakdown.
type LevelCount struct {
	Level scoring.Level `json:"priority_level"`
	Count int           `json:"count"`
}

// SummaryReport aggregates the most recent score records. It is computed on
// demand and never persisted.
type SummaryReport struct {
	RequestedLimit       int           `json:"requested_limit"`
	TasksSummarized      int           `json:"tasks_summarized"`
	ByPriority           []LevelCount  `json:"by_priority"`
	AveragePriorityScore float64       `json:"average_priority_score"`
	Tasks                []ScoreRecord `json:"tasks"`
}

// EmptyReport is the report returned when there is nothing to summarize.
// Slices are non-nil so they encode as [] rather than null.
func EmptyReport(limit int) SummaryReport {
	return SummaryReport{
		RequestedLimit: limit,
		ByPriority:     []LevelCount{},
		Tasks:          []ScoreRecord{},
	}
}
