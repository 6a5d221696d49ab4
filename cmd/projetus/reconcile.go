package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snak3gh0st/projetustgov/pkg/reconcile"
)

func newReconcileCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare source file row counts against landed lineage records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			results, err := a.checker.Run(ctx, a.cfg.RawDataDir)
			if err != nil {
				return err
			}
			volume, err := a.volume.Check(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(map[string]any{"files": results, "volume": volume})
			}
			fmt.Print(reconcile.Summary(results))
			fmt.Println("Volume: " + volume.Summary)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON instead of the text summary")
	return cmd
}
