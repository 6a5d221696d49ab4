// projetus is the Transfer Gov ETL command line: run an extraction,
// reconcile landed data against source files, or report pipeline health.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "projetus",
		Short:         "Transfer Gov ETL pipeline",
		Long:          "Extracts Brazilian government transfer-program data from downloaded source files, validates it, and loads it idempotently into Postgres.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newReconcileCommand())
	cmd.AddCommand(newHealthCommand())

	return cmd
}
