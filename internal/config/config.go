// Package config defines process configuration and the versioned scoring
// configuration file.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/okian/taskprio/internal/domain/summary"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TASKPRIO_"

// EnvConfigFile names the variable holding an optional YAML config path.
const EnvConfigFile = EnvPrefix + "CONFIG"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`
	// AuditDir is where score records are written and summaries read.
	AuditDir string `koanf:"audit_dir"`
	// ScoringConfig is the path of the versioned weights/levels file.
	ScoringConfig string `koanf:"scoring_config"`
	// Addr configures the HTTP listen address for serve mode.
	Addr string `koanf:"addr"`
	// DefaultSummaryLimit is used when summary is called without a limit.
	DefaultSummaryLimit int `koanf:"default_summary_limit"`
	// MaxSummaryLimit caps GET /summary?limit in serve mode.
	MaxSummaryLimit int `koanf:"max_summary_limit"`
	// FactorPolicy decides how out-of-domain factors are handled:
	// reject, clamp or permissive.
	FactorPolicy string `koanf:"factor_policy"`
	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		AuditDir:            "logs/audit",
		ScoringConfig:       "config/task-prioritization.yaml",
		Addr:                ":9080",
		DefaultSummaryLimit: summary.DefaultLimit,
		MaxSummaryLimit:     10_000,
		FactorPolicy:        string(scoring.PolicyReject),
		MetricsEnabled:      true,
		MetricsNamespace:    "taskprio",
	}
}
