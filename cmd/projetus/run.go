package main

import (
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one extraction: parse, validate, and load the latest source files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			result, err := a.pipeline.Run(ctx)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
}
