package scoring

import "errors"

// Sentinel kinds for scoring errors. These allow errors.Is from callers.
var (
	ErrInvalidFactor     = errors.New("invalid factor")
	ErrInvalidWeights    = errors.New("invalid weights")
	ErrInvalidThresholds = errors.New("invalid level thresholds")
	ErrUnknownPolicy     = errors.New("unknown factor policy")
)
