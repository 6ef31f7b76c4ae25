package scoring

import (
	"fmt"
	"math"
	"time"
)

// Level is a discrete priority tier.
type Level string

// Built-in priority tiers.
const (
	LevelCritical Level = "CRITICAL"
	LevelHigh     Level = "HIGH"
	LevelMedium   Level = "MEDIUM"
	LevelLow      Level = "LOW"
)

// KnownLevels lists the built-in tiers from highest to lowest.
func KnownLevels() []Level {
	return []Level{LevelCritical, LevelHigh, LevelMedium, LevelLow}
}

// LevelRank returns the position of a built-in tier (0 = CRITICAL) and
// false for any other value.
func LevelRank(l Level) (int, bool) {
	for i, k := range KnownLevels() {
		if k == l {
			return i, true
		}
	}
	return 0, false
}

// Threshold binds a tier to its inclusive lower score bound and SLA.
type Threshold struct {
	Level    Level         `json:"priority_level"`
	MinScore float64       `json:"min_score"`
	SLA      time.Duration `json:"-"`
}

// Thresholds is ordered from the highest tier to the lowest.
type Thresholds []Threshold

// DefaultThresholds returns the standard tier table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		{Level: LevelCritical, MinScore: 0.75, SLA: 4 * time.Hour},
		{Level: LevelHigh, MinScore: 0.60, SLA: 24 * time.Hour},
		{Level: LevelMedium, MinScore: 0.40, SLA: 72 * time.Hour},
		{Level: LevelLow, MinScore: 0.00, SLA: 168 * time.Hour},
	}
}

// Validate checks that bounds are within [0,1], strictly descending, end
// at zero, and that tier names are unique and non-empty.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: no levels", ErrInvalidThresholds)
	}
	seen := make(map[Level]bool, len(t))
	for i, th := range t {
		if th.Level == "" {
			return fmt.Errorf("%w: level %d has no name", ErrInvalidThresholds, i)
		}
		if seen[th.Level] {
			return fmt.Errorf("%w: duplicate level %s", ErrInvalidThresholds, th.Level)
		}
		seen[th.Level] = true
		if th.MinScore < 0 || th.MinScore > 1 || math.IsNaN(th.MinScore) {
			return fmt.Errorf("%w: %s min_score %v outside [0,1]", ErrInvalidThresholds, th.Level, th.MinScore)
		}
		if th.SLA < 0 {
			return fmt.Errorf("%w: %s has negative sla", ErrInvalidThresholds, th.Level)
		}
		if i > 0 && th.MinScore >= t[i-1].MinScore {
			return fmt.Errorf("%w: %s min_score must be below %s", ErrInvalidThresholds, th.Level, t[i-1].Level)
		}
	}
	if last := t[len(t)-1]; last.MinScore != 0 {
		return fmt.Errorf("%w: lowest level %s must start at 0", ErrInvalidThresholds, last.Level)
	}
	return nil
}

// Classify maps a score to a tier. Lower bounds are inclusive and checked
// from the highest tier down, so a boundary score belongs to the higher tier.
func (t Thresholds) Classify(score float64) Level {
	const eps = 1e-9
	for _, th := range t {
		if score+eps >= th.MinScore {
			return th.Level
		}
	}
	return t[len(t)-1].Level
}

// Lookup returns the threshold for a tier.
func (t Thresholds) Lookup(l Level) (Threshold, bool) {
	for _, th := range t {
		if th.Level == l {
			return th, true
		}
	}
	return Threshold{}, false
}

func (t Thresholds) clone() Thresholds {
	out := make(Thresholds, len(t))
	copy(out, t)
	return out
}

// FormatSLA renders whole hours as "4h" and anything else in Go duration
// syntax.
func FormatSLA(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	}
	return d.String()
}
