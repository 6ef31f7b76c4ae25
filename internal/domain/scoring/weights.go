package scoring

import (
	"fmt"
	"math"
)

// weightSumTolerance absorbs decimal-to-binary error in configured weights.
const weightSumTolerance = 1e-6

// Weights holds the per-factor weights. They must sum to 1.0.
type Weights struct {
	Urgency      float64 `json:"urgency"`
	Impact       float64 `json:"impact"`
	Effort       float64 `json:"effort"`
	Dependencies float64 `json:"dependencies"`
	Risk         float64 `json:"risk"`
}

// DefaultWeights returns the standard weight set.
func DefaultWeights() Weights {
	return Weights{
		Urgency:      0.30,
		Impact:       0.25,
		Effort:       0.20,
		Dependencies: 0.15,
		Risk:         0.10,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Impact + w.Effort + w.Dependencies + w.Risk
}

// Validate requires non-negative weights summing to 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		FactorUrgency:      w.Urgency,
		FactorImpact:       w.Impact,
		FactorEffort:       w.Effort,
		FactorDependencies: w.Dependencies,
		FactorRisk:         w.Risk,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidWeights, name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}
