package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/spf13/cobra"
)

func (c *cli) levelsCmd() *cobra.Command {
	var outputFmt string

	cmd := &cobra.Command{
		Use:   "levels",
		Short: "Show the priority tiers, their lower bounds and SLAs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(outputFmt); err != nil {
				return err
			}
			sc, err := c.scorer(cmd.Context())
			if err != nil {
				return err
			}
			table := model.LevelTable(sc.Thresholds())

			if outputFmt == outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(table)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LEVEL\tMIN SCORE\tSLA")
			for _, l := range table {
				fmt.Fprintf(tw, "%s\t%.2f\t%s\n", l.Level, l.MinScore, l.SLA)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&outputFmt, "output", outputText, "Output format: text or json")
	return cmd
}
