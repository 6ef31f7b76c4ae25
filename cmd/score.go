package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func (c *cli) scoreCmd() *cobra.Command {
	var (
		outputFmt string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "score <task_id> <task_name> <urgency> <impact> <effort> <dependencies> <risk>",
		Short: "Score one task and record the decision",
		Long: `Computes the weighted priority score of a task and prints LEVEL:score.

Factor domains: urgency, impact, effort and risk 1-10; dependencies 0-5.`,
		Example: `  taskprio score TASK-001 "Fix critical bug" 9 10 3 1 9`,
		Args:    cobra.ExactArgs(7),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(outputFmt); err != nil {
				return err
			}
			factors, err := scoring.ParseFactors(args[2:]...)
			if err != nil {
				return err
			}
			in := scoring.Input{TaskID: args[0], TaskName: args[1], Factors: factors}

			svc, err := c.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			score := svc.Score
			if dryRun {
				score = svc.Evaluate
			}
			out, err := score(cmd.Context(), in)
			if err != nil {
				return err
			}
			return writeScored(cmd.OutOrStdout(), outputFmt, out, !dryRun)
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", outputText, "Output format: text or json")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Score without writing an audit record")
	return cmd
}

func checkOutput(f string) error {
	switch f {
	case outputText, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q: use text or json", f)
	}
}

// scoreLine is the plain-text result of one scoring call.
func scoreLine(r model.ScoreRecord) string {
	return fmt.Sprintf("%s:%.2f", r.PriorityLevel, r.PriorityScore)
}

type scoredView struct {
	model.ScoreRecord
	SLA      string    `json:"sla"`
	DueAt    time.Time `json:"due_at"`
	Adjusted bool      `json:"adjusted,omitempty"`
	Recorded bool      `json:"recorded"`
}

func newScoredView(s model.Scored, recorded bool) scoredView {
	return scoredView{
		ScoreRecord: s.Record,
		SLA:         scoring.FormatSLA(s.SLA),
		DueAt:       s.DueAt,
		Adjusted:    s.Adjusted,
		Recorded:    recorded,
	}
}

func writeScored(w io.Writer, format string, s model.Scored, recorded bool) error {
	if format == outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newScoredView(s, recorded))
	}
	_, err := fmt.Fprintln(w, scoreLine(s.Record))
	return err
}
