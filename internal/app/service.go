// Package service wires the scorer, the audit log and the summarizer into the
// operations exposed by the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/taskprio/internal/adapters/auditlog"
	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/okian/taskprio/internal/domain/summary"
	"github.com/okian/taskprio/pkg/logger"
	"github.com/okian/taskprio/pkg/metrics"
)

// Service implements the task prioritization operations.
type Service struct {
	mu sync.Mutex

	scorer   scoring.Scorer
	recorder auditlog.Recorder
	reader   auditlog.Reader
	now      func() time.Time
	logger   logger.Logger

	scored    atomic.Int64
	rejected  atomic.Int64
	written   atomic.Int64
	summaries atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer replaces the default weighted scorer.
func WithScorer(sc scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithRecorder sets where score records are persisted.
func WithRecorder(r auditlog.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithReader sets where summaries read audit logs from.
func WithReader(r auditlog.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.reader = r
		}
	}
}

// WithClock sets the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service. Without WithRecorder and WithReader only
// Evaluate and Levels are usable.
func New(opts ...Option) *Service {
	s := &Service{
		scorer: scoring.NewWeightedScorer(),
		now:    time.Now,
		logger: logger.Nop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Evaluate scores a task without recording it.
func (s *Service) Evaluate(ctx context.Context, in scoring.Input) (model.Scored, error) {
	res, err := s.scorer.Score(ctx, in)
	if err != nil {
		s.rejected.Add(1)
		metrics.RecordScoringError(errorKind(err))
		s.logger.Warn(ctx, "task rejected",
			logger.String("task_id", in.TaskID),
			logger.Error(err),
		)
		return model.Scored{}, err
	}

	if res.Adjusted {
		s.logger.Warn(ctx, "factors clamped into range",
			logger.String("task_id", in.TaskID),
			logger.Any("given", in.Factors),
			logger.Any("used", res.Factors),
		)
	} else if verr := res.Factors.Validate(); verr != nil {
		s.logger.Warn(ctx, "scoring out-of-range factors as given",
			logger.String("task_id", in.TaskID),
			logger.Float64("score", res.Score),
			logger.Error(verr),
		)
	}

	rec := model.NewScoreRecord(res, s.now())
	return model.Scored{
		Record:   rec,
		SLA:      res.SLA,
		DueAt:    rec.Timestamp.Add(res.SLA),
		Adjusted: res.Adjusted,
	}, nil
}

// Score evaluates a task and appends its record to the audit log.
func (s *Service) Score(ctx context.Context, in scoring.Input) (model.Scored, error) {
	out, err := s.ScoreBatch(ctx, []scoring.Input{in})
	if err != nil {
		return model.Scored{}, err
	}
	return out[0], nil
}

// ScoreBatch evaluates every task and, only if all of them are valid, appends
// their records to the audit log in input order with a single write.
func (s *Service) ScoreBatch(ctx context.Context, inputs []scoring.Input) ([]model.Scored, error) {
	if s.recorder == nil {
		return nil, fmt.Errorf("%w: recorder", ErrNotConfigured)
	}
	if len(inputs) == 0 {
		return []model.Scored{}, nil
	}

	start := time.Now()
	out := make([]model.Scored, 0, len(inputs))
	records := make([]model.ScoreRecord, 0, len(inputs))
	for i, in := range inputs {
		sc, err := s.Evaluate(ctx, in)
		if err != nil {
			if len(inputs) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("task %d (%s): %w", i+1, in.TaskID, err)
		}
		out = append(out, sc)
		records = append(records, sc.Record)
	}

	s.mu.Lock()
	err := s.recorder.Append(ctx, records...)
	s.mu.Unlock()
	if err != nil {
		metrics.RecordRecordWriteError()
		s.logger.Error(ctx, "failed to write score records",
			logger.Int("records", len(records)),
			logger.Error(err),
		)
		return nil, err
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000 / float64(len(records))
	for _, sc := range out {
		metrics.RecordTaskScored(string(sc.Record.PriorityLevel), elapsed)
		s.logger.Info(ctx, "task scored",
			logger.String("task_id", sc.Record.TaskID),
			logger.String("level", string(sc.Record.PriorityLevel)),
			logger.Float64("score", sc.Record.PriorityScore),
		)
	}
	metrics.RecordRecordsWritten(len(records))
	s.scored.Add(int64(len(records)))
	s.written.Add(int64(len(records)))
	return out, nil
}

// Summary aggregates the most recent limit records. A missing or empty
// audit directory yields an empty report.
func (s *Service) Summary(ctx context.Context, limit int) (model.SummaryReport, error) {
	if err := summary.ValidateLimit(limit); err != nil {
		return model.SummaryReport{}, err
	}
	if s.reader == nil {
		return model.SummaryReport{}, fmt.Errorf("%w: reader", ErrNotConfigured)
	}

	start := time.Now()
	files, err := s.reader.ReadAll(ctx)
	if errors.Is(err, summary.ErrNoLogsFound) {
		s.logger.Info(ctx, "no records to summarize", logger.Error(err))
		files = nil
	} else if err != nil {
		return model.SummaryReport{}, err
	}

	report, stats, err := summary.Build(files, limit)
	if err != nil {
		return model.SummaryReport{}, err
	}

	if stats.Skipped > 0 {
		s.logger.Warn(ctx, "skipped malformed audit entries", logger.Int("skipped", stats.Skipped))
	}
	elapsed := time.Since(start)
	metrics.RecordSummaryRun(float64(elapsed.Microseconds())/1000, stats.Files, report.TasksSummarized, stats.Skipped)
	s.summaries.Add(1)
	s.logger.Debug(ctx, "summary built",
		logger.Int("files", stats.Files),
		logger.Int("records", stats.Records),
		logger.Int("summarized", report.TasksSummarized),
		logger.Duration("elapsed", elapsed),
	)
	return report, nil
}

// Levels returns the tier table in use, highest tier first.
func (s *Service) Levels() scoring.Thresholds {
	if src, ok := s.scorer.(interface{ Thresholds() scoring.Thresholds }); ok {
		return src.Thresholds()
	}
	return scoring.DefaultThresholds()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"tasksScored":    s.scored.Load(),
		"tasksRejected":  s.rejected.Load(),
		"recordsWritten": s.written.Load(),
		"summaries":      s.summaries.Load(),
	}
	if p, ok := s.scorer.(interface{ Policy() scoring.Policy }); ok {
		stats["factorPolicy"] = string(p.Policy())
	}
	if r, ok := s.recorder.(*auditlog.FileRecorder); ok {
		stats["auditDir"] = r.Dir()
		stats["auditFile"] = r.Path()
		stats["auditRecords"] = r.Count()
	}
	return stats
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scoring.ErrInvalidFactor):
		return "invalid_factor"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
