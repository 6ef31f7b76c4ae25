package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/taskprio/internal/config"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TASKPRIO_AUDIT_DIR", "/var/log/taskprio")
			_ = os.Setenv("TASKPRIO_DEFAULT_SUMMARY_LIMIT", "25")
			_ = os.Setenv("TASKPRIO_FACTOR_POLICY", "clamp")
			_ = os.Setenv("TASKPRIO_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AuditDir, convey.ShouldEqual, "/var/log/taskprio")
				convey.So(cfg.DefaultSummaryLimit, convey.ShouldEqual, 25)
				convey.So(cfg.Policy(), convey.ShouldEqual, scoring.PolicyClamp)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
# audit settings
audit_dir: /srv/audit
addr: ":9090"
max_summary_limit: 500
factor_policy: permissive
`)
			_ = os.Setenv("TASKPRIO_CONFIG", tmpFile)
			_ = os.Setenv("TASKPRIO_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.AuditDir, convey.ShouldEqual, "/srv/audit")
				convey.So(cfg.MaxSummaryLimit, convey.ShouldEqual, 500)
				convey.So(cfg.Policy(), convey.ShouldEqual, scoring.PolicyPermissive)
				convey.So(cfg.DefaultSummaryLimit, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("TASKPRIO_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TASKPRIO_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TASKPRIO_DEFAULT_SUMMARY_LIMIT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the default summary limit is not positive", func() {
			_ = os.Setenv("TASKPRIO_DEFAULT_SUMMARY_LIMIT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the factor policy is unknown", func() {
			_ = os.Setenv("TASKPRIO_FACTOR_POLICY", "lenient")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the log format is unknown", func() {
			_ = os.Setenv("TASKPRIO_LOG_FORMAT", "xml")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When metrics are configured through the environment", func() {
			_ = os.Setenv("TASKPRIO_METRICS_ENABLED", "false")
			_ = os.Setenv("TASKPRIO_METRICS_NAMESPACE", "ops")

			cfg, err := config.Load(ctx)

			convey.Convey("Then both settings are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "ops")
			})
		})

		convey.Convey("When the metrics namespace is not a valid prefix", func() {
			_ = os.Setenv("TASKPRIO_METRICS_NAMESPACE", "task-prio")

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func TestCheckAuditDir(t *testing.T) {
	convey.Convey("Given candidate audit directories", t, func() {
		root := t.TempDir()

		convey.Convey("Then a missing directory is acceptable", func() {
			convey.So(config.CheckAuditDir(filepath.Join(root, "later")), convey.ShouldBeNil)
		})

		convey.Convey("Then an existing directory is acceptable", func() {
			convey.So(config.CheckAuditDir(root), convey.ShouldBeNil)
		})

		convey.Convey("Then a regular file is a missing dependency with remediation", func() {
			path := filepath.Join(root, "audit")
			convey.So(os.WriteFile(path, nil, 0o600), convey.ShouldBeNil)

			err := config.CheckAuditDir(path)
			convey.So(errors.Is(err, config.ErrMissingDependency), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "TASKPRIO_AUDIT_DIR")
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"TASKPRIO_CONFIG",
		"TASKPRIO_ADDR",
		"TASKPRIO_AUDIT_DIR",
		"TASKPRIO_SCORING_CONFIG",
		"TASKPRIO_LOG_LEVEL",
		"TASKPRIO_LOG_FORMAT",
		"TASKPRIO_DEFAULT_SUMMARY_LIMIT",
		"TASKPRIO_MAX_SUMMARY_LIMIT",
		"TASKPRIO_FACTOR_POLICY",
		"TASKPRIO_METRICS_ENABLED",
		"TASKPRIO_METRICS_NAMESPACE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "taskprio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
