// Package cli implements chartctl, a command line front end for the chart
// engine and a running chart service.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "chartctl",
		Short:        "Compute and fetch natal charts",
		SilenceUsage: true,
	}
	cmd.AddCommand(computeCmd(), hashCmd(), getCmd())
	return cmd
}
