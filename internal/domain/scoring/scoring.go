// Package scoring computes task priority scores and tiers from five factors.
package scoring

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Policy controls how factors outside their documented domain are handled.
type Policy string

// Supported factor policies.
const (
	// PolicyReject fails the call with ErrInvalidFactor.
	PolicyReject Policy = "reject"
	// PolicyClamp forces each factor into its domain before scoring.
	PolicyClamp Policy = "clamp"
	// PolicyPermissive scores the factors as given; the score may leave [0,1].
	PolicyPermissive Policy = "permissive"
)

func (p Policy) valid() bool {
	switch p {
	case PolicyReject, PolicyClamp, PolicyPermissive:
		return true
	}
	return false
}

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PolicyReject, nil
	}
	if !p.valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
	return p, nil
}

// Input abstracts the task fields needed for scoring.
type Input struct {
	TaskID   string
	TaskName string
	Factors  Factors
}

// Result contains the computed score for a task together with the exact
// factors and weights that produced it.
type Result struct {
	TaskID   string
	TaskName string
	Score    float64
	Level    Level
	SLA      time.Duration
	Factors  Factors
	Weights  Weights
	// Adjusted is true when the clamp policy changed at least one factor.
	Adjusted bool
}

// Scorer computes a priority score from an input.
type Scorer interface {
	// Score computes a score, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (Result, error)
}

// WeightedScorer implements Scorer as a weighted sum of normalised factors.
type WeightedScorer struct {
	weights    Weights
	thresholds Thresholds
	policy     Policy
}

// NewWeightedScorer creates a scorer with the default weights, tier table and
// reject policy, adjusted by opts.
func NewWeightedScorer(opts ...Option) *WeightedScorer {
	s := &WeightedScorer{
		weights:    DefaultWeights(),
		thresholds: DefaultThresholds(),
		policy:     PolicyReject,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Weights returns the weights used by the scorer.
func (s *WeightedScorer) Weights() Weights { return s.weights }

// Thresholds returns a copy of the tier table used by the scorer.
func (s *WeightedScorer) Thresholds() Thresholds { return s.thresholds.clone() }

// Policy returns the active factor policy.
func (s *WeightedScorer) Policy() Policy { return s.policy }

// Score computes the priority score for the given input.
func (s *WeightedScorer) Score(ctx context.Context, in Input) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	factors := in.Factors
	adjusted := false
	switch s.policy {
	case PolicyReject:
		if err := factors.Validate(); err != nil {
			return Result{}, err
		}
	case PolicyClamp:
		factors, adjusted = factors.Clamp()
	case PolicyPermissive:
	}

	score := Round2(Raw(factors, s.weights))
	level := s.thresholds.Classify(score)
	th, _ := s.thresholds.Lookup(level)

	return Result{
		TaskID:   in.TaskID,
		TaskName: in.TaskName,
		Score:    score,
		Level:    level,
		SLA:      th.SLA,
		Factors:  factors,
		Weights:  s.weights,
		Adjusted: adjusted,
	}, nil
}

// Raw returns the unrounded weighted sum. Effort is inverted so that lower
// effort contributes more, and dependencies count against the task.
func Raw(f Factors, w Weights) float64 {
	return float64(f.Urgency)/10*w.Urgency +
		float64(f.Impact)/10*w.Impact +
		float64(10-f.Effort)/10*w.Effort +
		(1-float64(f.Dependencies)/5)*w.Dependencies +
		float64(f.Risk)/10*w.Risk
}
