package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/snak3gh0st/projetustgov/pkg/health"
)

func newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Classify pipeline freshness from the latest audit row",
		Long:  "Exits 0 when healthy, 1 when degraded, 2 when unhealthy, so schedulers can alert on the exit code.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			report, err := a.health.Check(ctx)
			a.Close(ctx)
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}

			switch report.Status {
			case health.StatusDegraded:
				os.Exit(1)
			case health.StatusUnhealthy:
				os.Exit(2)
			}
			return nil
		},
	}
}
