package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var (
		year   int
		month  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Resolve or create the monthly review spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 || month == 0 {
				return fmt.Errorf("--year and --month are required")
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("invalid month: %d", month)
			}

			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			sheetID, err := a.provisioner().GetOrCreate(ctx, year, month, dryRun)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sheet ID: %s\n", sheetID)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (YYYY)")
	cmd.Flags().IntVar(&month, "month", 0, "month (1-12)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print actions without executing")

	rootCmd.AddCommand(cmd)
}
