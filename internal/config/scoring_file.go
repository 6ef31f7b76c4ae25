package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/taskprio/internal/domain/scoring"
	yamlv3 "gopkg.in/yaml.v3"
)

// ScoringVersion is the only scoring file version this build understands.
const ScoringVersion = 1

const scoringHeader = `# Task prioritization scoring configuration.
# Generated on first run. Weights must sum to 1.0; levels are listed from
# the highest tier down and the last level must start at 0.
`

// Scoring is the validated content of the scoring configuration file.
type Scoring struct {
	Version    int
	Weights    scoring.Weights
	Thresholds scoring.Thresholds
}

// DefaultScoring returns the built-in scoring configuration.
func DefaultScoring() Scoring {
	return Scoring{
		Version:    ScoringVersion,
		Weights:    scoring.DefaultWeights(),
		Thresholds: scoring.DefaultThresholds(),
	}
}

type scoringFile struct {
	Version int         `koanf:"version" yaml:"version"`
	Weights weightsFile `koanf:"weights" yaml:"weights"`
	Levels  []levelFile `koanf:"levels" yaml:"levels"`
}

type weightsFile struct {
	Urgency      float64 `koanf:"urgency" yaml:"urgency"`
	Impact       float64 `koanf:"impact" yaml:"impact"`
	Effort       float64 `koanf:"effort" yaml:"effort"`
	Dependencies float64 `koanf:"dependencies" yaml:"dependencies"`
	Risk         float64 `koanf:"risk" yaml:"risk"`
}

type levelFile struct {
	Name     string  `koanf:"name" yaml:"name"`
	MinScore float64 `koanf:"min_score" yaml:"min_score"`
	SLA      string  `koanf:"sla" yaml:"sla"`
}

func toFile(s Scoring) scoringFile {
	f := scoringFile{
		Version: s.Version,
		Weights: weightsFile(s.Weights),
	}
	for _, th := range s.Thresholds {
		f.Levels = append(f.Levels, levelFile{
			Name:     string(th.Level),
			MinScore: th.MinScore,
			SLA:      scoring.FormatSLA(th.SLA),
		})
	}
	return f
}

func (f scoringFile) toScoring() (Scoring, error) {
	if f.Version != ScoringVersion {
		return Scoring{}, fmt.Errorf("%w: unsupported scoring config version %d", ErrInvalidConfig, f.Version)
	}
	s := Scoring{Version: f.Version, Weights: scoring.Weights(f.Weights)}
	for _, l := range f.Levels {
		sla, err := time.ParseDuration(l.SLA)
		if err != nil {
			return Scoring{}, fmt.Errorf("%w: level %s sla %q: %v", ErrInvalidConfig, l.Name, l.SLA, err)
		}
		s.Thresholds = append(s.Thresholds, scoring.Threshold{
			Level:    scoring.Level(l.Name),
			MinScore: l.MinScore,
			SLA:      sla,
		})
	}
	if err := s.Weights.Validate(); err != nil {
		return Scoring{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return Scoring{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return s, nil
}

// EnsureScoring writes the default scoring file at path if nothing exists
// there yet. It reports whether a file was created. An existing file is
// never modified.
func EnsureScoring(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}
	return WriteScoring(ctx, path, DefaultScoring(), false)
}

// WriteScoring writes s to path. Unless overwrite is set, an existing file is
// left alone and false is returned.
func WriteScoring(ctx context.Context, path string, s Scoring, overwrite bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := s.validate(); err != nil {
		return false, err
	}

	body, err := yamlv3.Marshal(toFile(s))
	if err != nil {
		return false, fmt.Errorf("%w: encode scoring config: %v", ErrInvalidConfig, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("%w: create %s: %v; make the directory writable or set %sSCORING_CONFIG",
				ErrMissingDependency, dir, err, EnvPrefix)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: write %s: %v", ErrMissingDependency, path, err)
	}
	if _, err := f.WriteString(scoringHeader); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("%w: write %s: %v", ErrLoadConfig, path, err)
	}
	if _, err := f.Write(body); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("%w: write %s: %v", ErrLoadConfig, path, err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("%w: write %s: %v", ErrLoadConfig, path, err)
	}
	return true, nil
}

func (s Scoring) validate() (Scoring, error) {
	return toFile(s).toScoring()
}

// LoadScoring reads and validates the scoring file at path.
func LoadScoring(ctx context.Context, path string) (*Scoring, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	var f scoringFile
	if err := k.UnmarshalWithConf("", &f, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
	}

	s, err := f.toScoring()
	if err != nil {
		return nil, err
	}
	return &s, nil
}
