package main

import (
	"encoding/json"

	"github.com/okian/taskprio/internal/domain/summary"
	"github.com/spf13/cobra"
)

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [limit]",
		Short: "Summarize the most recent audit records as JSON",
		Long: `Reads every audit file, keeps the newest <limit> valid records across all
files and prints counts per tier and the average score. Malformed records are
skipped. An empty or missing audit directory yields an empty report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 1 {
				raw = args[0]
			}
			limit, err := summary.ParseLimit(raw, c.cfg.DefaultSummaryLimit)
			if err != nil {
				return err
			}

			svc, err := c.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			report, err := svc.Summary(cmd.Context(), limit)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}
