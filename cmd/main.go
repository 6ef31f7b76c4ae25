package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/taskprio/internal/adapters/auditlog"
	app "github.com/okian/taskprio/internal/app"
	"github.com/okian/taskprio/internal/config"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/okian/taskprio/pkg/logger"
	"github.com/okian/taskprio/pkg/metrics"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: stdout, stderr: stderr}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		c.fail(ctx, err)
		return 1
	}
	return 0
}

// cli holds state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	logLevel   string
	logFormat  string
	auditDir   string
	policy     string

	cfg *config.Config
	log logger.Logger
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "taskprio",
		Short: "Score tasks by priority and summarize the audit trail",
		Long: `taskprio scores tasks from five factors (urgency, impact, effort,
dependencies, risk) into a priority tier, records every decision as a JSON
audit record, and summarizes the most recent records.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "Path to the YAML process config (env: "+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: text or json")
	root.PersistentFlags().StringVar(&c.auditDir, "audit-dir", "", "Directory for audit records (env: "+config.EnvPrefix+"AUDIT_DIR)")
	root.PersistentFlags().StringVar(&c.policy, "factor-policy", "", "Out-of-range factors: reject, clamp or permissive")

	root.AddCommand(
		c.scoreCmd(),
		c.summaryCmd(),
		c.batchCmd(),
		c.levelsCmd(),
		c.initCmd(),
		c.serveCmd(),
	)
	return root
}

// setup initializes logging and loads configuration. Flags override the
// config file and environment.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := logger.Init(logger.WithWriter(c.stderr)); err != nil {
		return err
	}
	c.log = logger.Get()

	if c.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, c.configFile); err != nil {
			return err
		}
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}
	if c.auditDir != "" {
		cfg.AuditDir = c.auditDir
	}
	if c.policy != "" {
		cfg.FactorPolicy = c.policy
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithWriter(c.stderr), logger.WithFormat(format)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
	)

	c.cfg = cfg
	c.log = logger.Named("cli")
	return nil
}

// fail reports a command error on stderr through the logger, falling back to
// plain text when logging never came up.
func (c *cli) fail(ctx context.Context, err error) {
	if c.log == nil {
		fmt.Fprintln(c.stderr, "error:", err)
		return
	}
	fields := []logger.Field{logger.Error(err)}
	if errors.Is(err, config.ErrMissingDependency) {
		fields = append(fields, logger.String("hint", "check the configured paths and permissions"))
	}
	c.log.Error(ctx, "command failed", fields...)
}

// scorer loads the scoring configuration, generating the default file on
// first run.
func (c *cli) scorer(ctx context.Context) (*scoring.WeightedScorer, error) {
	created, err := config.EnsureScoring(ctx, c.cfg.ScoringConfig)
	if err != nil {
		return nil, err
	}
	if created {
		c.log.Info(ctx, "generated default scoring config", logger.String("path", c.cfg.ScoringConfig))
	}

	sc, err := config.LoadScoring(ctx, c.cfg.ScoringConfig)
	if err != nil {
		return nil, err
	}
	return scoring.NewWeightedScorer(
		scoring.WithWeights(sc.Weights),
		scoring.WithThresholds(sc.Thresholds),
		scoring.WithPolicy(c.cfg.Policy()),
	), nil
}

// service builds the application service over the configured audit
// directory. The scorer is optional for read-only commands.
func (c *cli) service(ctx context.Context, withScorer bool) (*app.Service, error) {
	if err := config.CheckAuditDir(c.cfg.AuditDir); err != nil {
		return nil, err
	}

	opts := []app.Option{
		app.WithLogger(logger.Named("service")),
		app.WithRecorder(auditlog.NewFileRecorder(c.cfg.AuditDir)),
		app.WithReader(auditlog.NewDirReader(c.cfg.AuditDir)),
	}
	if withScorer {
		sc, err := c.scorer(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithScorer(sc))
	}
	return app.New(opts...), nil
}
