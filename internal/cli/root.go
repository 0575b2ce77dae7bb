package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "automail-analytics",
	Short:         "Reconcile email-campaign delivery data into review spreadsheets",
	Long:          "Automail Analytics - downloads per-day request records and delivery event logs, joins them, and publishes the result into a per-day spreadsheet tab for manual review",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
