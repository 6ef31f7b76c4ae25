package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Factor names as they appear in records and configuration.
const (
	FactorUrgency      = "urgency"
	FactorImpact       = "impact"
	FactorEffort       = "effort"
	FactorDependencies = "dependencies"
	FactorRisk         = "risk"
)

// Factors is the five-factor input tuple for a task.
type Factors struct {
	Urgency      int `json:"urgency"`
	Impact       int `json:"impact"`
	Effort       int `json:"effort"`
	Dependencies int `json:"dependencies"`
	Risk         int `json:"risk"`
}

// Bounds is the inclusive domain of a single factor.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) contains(v int) bool { return v >= b.Min && v <= b.Max }

func (b Bounds) clamp(v int) int {
	switch {
	case v < b.Min:
		return b.Min
	case v > b.Max:
		return b.Max
	default:
		return v
	}
}

// FactorBounds returns the documented domain of every factor.
func FactorBounds() map[string]Bounds {
	return map[string]Bounds{
		FactorUrgency:      {Min: 1, Max: 10},
		FactorImpact:       {Min: 1, Max: 10},
		FactorEffort:       {Min: 1, Max: 10},
		FactorDependencies: {Min: 0, Max: 5},
		FactorRisk:         {Min: 1, Max: 10},
	}
}

// field pairs a factor name with a pointer into a Factors value, in the
// canonical order used for validation messages.
type field struct {
	name string
	ptr  *int
}

func (f *Factors) fields() []field {
	return []field{
		{FactorUrgency, &f.Urgency},
		{FactorImpact, &f.Impact},
		{FactorEffort, &f.Effort},
		{FactorDependencies, &f.Dependencies},
		{FactorRisk, &f.Risk},
	}
}

// Validate reports the first factor outside its domain.
func (f Factors) Validate() error {
	bounds := FactorBounds()
	for _, fl := range f.fields() {
		b := bounds[fl.name]
		if !b.contains(*fl.ptr) {
			return fmt.Errorf("%w: %s=%d outside [%d,%d]", ErrInvalidFactor, fl.name, *fl.ptr, b.Min, b.Max)
		}
	}
	return nil
}

// Clamp returns a copy with every factor forced into its domain, and
// whether anything changed.
func (f Factors) Clamp() (Factors, bool) {
	bounds := FactorBounds()
	out := f
	changed := false
	for _, fl := range out.fields() {
		v := bounds[fl.name].clamp(*fl.ptr)
		if v != *fl.ptr {
			*fl.ptr = v
			changed = true
		}
	}
	return out, changed
}

// ParseFactor parses one factor given as text. Only integers are accepted;
// the domain is not checked here.
func ParseFactor(name, raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidFactor, name, raw)
	}
	return v, nil
}

// ParseFactors parses the five factors in CLI order:
// urgency, impact, effort, dependencies, risk.
func ParseFactors(raw ...string) (Factors, error) {
	var f Factors
	fields := f.fields()
	if len(raw) != len(fields) {
		return Factors{}, fmt.Errorf("%w: expected %d factors, got %d", ErrInvalidFactor, len(fields), len(raw))
	}
	for i, fl := range fields {
		v, err := ParseFactor(fl.name, raw[i])
		if err != nil {
			return Factors{}, err
		}
		*fl.ptr = v
	}
	return f, nil
}

// Round2 rounds to two decimal places, half away from zero (half-up for the
// non-negative scores produced here). A small epsilon absorbs binary
// representation error so that e.g. 0.745 rounds to 0.75.
func Round2(x float64) float64 {
	const eps = 1e-9
	if x < 0 {
		return -math.Floor(-x*100+0.5+eps) / 100
	}
	return math.Floor(x*100+0.5+eps) / 100
}
