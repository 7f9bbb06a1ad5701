package main

import (
	"github.com/spf13/cobra"

	"mysphere/internal/cli"
	"mysphere/internal/period"
	"mysphere/internal/report"
)

func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print stats for every collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := bootstrap("report")
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			start, err := cfg.WorkoutStart()
			if err != nil {
				return err
			}

			repo, err := cli.InitSQLite(logger, cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			r, err := report.Collect(cmd.Context(), repo, period.SystemClock{Location: loc}, start, cfg.WorkoutsPerWeek)
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), r)
		},
	}
}
