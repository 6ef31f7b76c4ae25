package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/okian/taskprio/internal/domain/scoring"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TASKPRIO_CONFIG is set
//  3. env (prefix TASKPRIO_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// TASKPRIO_AUDIT_DIR -> audit_dir. Underscores are kept so keys match
	// the flat koanf tags on the struct.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the fields every command relies on.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.AuditDir) == "":
		return fmt.Errorf("%w: audit_dir must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ScoringConfig) == "":
		return fmt.Errorf("%w: scoring_config must not be empty", ErrInvalidConfig)
	case c.DefaultSummaryLimit <= 0:
		return fmt.Errorf("%w: default_summary_limit must be positive", ErrInvalidConfig)
	case c.MaxSummaryLimit < c.DefaultSummaryLimit:
		return fmt.Errorf("%w: max_summary_limit must be at least default_summary_limit", ErrInvalidConfig)
	case !metricNamePattern.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name prefix", ErrInvalidConfig, c.MetricsNamespace)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := scoring.ParsePolicy(c.FactorPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Policy returns the parsed factor policy. Validate guarantees it parses.
func (c *Config) Policy() scoring.Policy {
	p, err := scoring.ParsePolicy(c.FactorPolicy)
	if err != nil {
		return scoring.PolicyReject
	}
	return p
}

// CheckAuditDir verifies that the audit directory is usable: it may be
// absent (it is created on first write) but must not be anything other
// than a directory.
func CheckAuditDir(dir string) error {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: audit directory %s is not accessible (%v); set %sAUDIT_DIR to a writable directory",
			ErrMissingDependency, dir, err, EnvPrefix)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: audit directory %s is not a directory; set %sAUDIT_DIR to a writable directory",
			ErrMissingDependency, dir, EnvPrefix)
	}
	return nil
}
