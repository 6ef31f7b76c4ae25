package model

import (
	"fmt"
	"strings"

	"github.com/okian/taskprio/internal/domain/scoring"
)

// TaskInput is the JSON shape of a task submitted for scoring, used by batch
// files and POST /score. Factors are pointers so that an absent factor is
// told apart from zero.
type TaskInput struct {
	TaskID       string `json:"task_id"`
	TaskName     string `json:"task_name"`
	Urgency      *int   `json:"urgency"`
	Impact       *int   `json:"impact"`
	Effort       *int   `json:"effort"`
	Dependencies *int   `json:"dependencies"`
	Risk         *int   `json:"risk"`
}

// Input converts t for the scorer. The task id and every factor must be
// present; factor ranges are left to the scorer's policy.
func (t TaskInput) Input() (scoring.Input, error) {
	if strings.TrimSpace(t.TaskID) == "" {
		return scoring.Input{}, fmt.Errorf("%w: missing task_id", ErrInvalidTask)
	}
	for _, f := range []struct {
		name string
		v    *int
	}{
		{scoring.FactorUrgency, t.Urgency},
		{scoring.FactorImpact, t.Impact},
		{scoring.FactorEffort, t.Effort},
		{scoring.FactorDependencies, t.Dependencies},
		{scoring.FactorRisk, t.Risk},
	} {
		if f.v == nil {
			return scoring.Input{}, fmt.Errorf("%w: task %s: missing %s", ErrInvalidTask, t.TaskID, f.name)
		}
	}
	return scoring.Input{
		TaskID:   t.TaskID,
		TaskName: t.TaskName,
		Factors: scoring.Factors{
			Urgency:      *t.Urgency,
			Impact:       *t.Impact,
			Effort:       *t.Effort,
			Dependencies: *t.Dependencies,
			Risk:         *t.Risk,
		},
	}, nil
}

// LevelInfo describes one tier for display.
type LevelInfo struct {
	Level    scoring.Level `json:"level"`
	MinScore float64       `json:"min_score"`
	SLA      string        `json:"sla"`
}

// LevelTable lists the tiers of t, highest first.
func LevelTable(t scoring.Thresholds) []LevelInfo {
	out := make([]LevelInfo, 0, len(t))
	for _, th := range t {
		out = append(out, LevelInfo{Level: th.Level, MinScore: th.MinScore, SLA: scoring.FormatSLA(th.SLA)})
	}
	return out
}
