package scoring

// Option applies a configuration option to the WeightedScorer.
type Option func(*WeightedScorer)

// WithWeights sets the factor weights. Invalid weight sets are ignored so
// that the scorer always holds a usable configuration; callers validate
// configuration before building the scorer.
func WithWeights(w Weights) Option {
	return func(s *WeightedScorer) {
		if w.Validate() == nil {
			s.weights = w
		}
	}
}

// WithThresholds sets the level thresholds, ignoring invalid tables.
func WithThresholds(t Thresholds) Option {
	return func(s *WeightedScorer) {
		if t.Validate() == nil {
			s.thresholds = t.clone()
		}
	}
}

// WithPolicy sets how out-of-domain factors are handled.
func WithPolicy(p Policy) Option {
	return func(s *WeightedScorer) {
		if p.valid() {
			s.policy = p
		}
	}
}
