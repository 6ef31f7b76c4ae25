package main

import (
	"fmt"

	"github.com/okian/taskprio/internal/config"
	"github.com/okian/taskprio/pkg/logger"
	"github.com/spf13/cobra"
)

func (c *cli) initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default scoring configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.cfg.ScoringConfig
			written, err := config.WriteScoring(cmd.Context(), path, config.DefaultScoring(), force)
			if err != nil {
				return err
			}
			if !written {
				c.log.Warn(cmd.Context(), "scoring config already exists; use --force to overwrite", logger.String("path", path))
				return nil
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing scoring config")
	return cmd
}
