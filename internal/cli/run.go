package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/automail/analytics-pipeline/internal/jptime"
)

type runOptions struct {
	yesterday   bool
	date        string
	year        int
	month       int
	monthToDate bool
	sheetID     string
	dryRun      bool
}

func init() {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation pipeline for one day or a whole month",
		Example: `  automail-analytics run --yesterday
  automail-analytics run --date 2026-01-15
  automail-analytics run --year 2026 --month 1
  automail-analytics run --month-to-date
  automail-analytics run --yesterday --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.yesterday, "yesterday", false, "process yesterday's data (for daily automation)")
	cmd.Flags().StringVar(&opts.date, "date", "", "process a specific date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.year, "year", 0, "year to process (requires --month, processes all days)")
	cmd.Flags().IntVar(&opts.month, "month", 0, "month to process (requires --year)")
	cmd.Flags().BoolVar(&opts.monthToDate, "month-to-date", false, "process from the 1st of the current month to today")
	cmd.Flags().StringVar(&opts.sheetID, "sheet-id", "", "spreadsheet id (skips monthly provisioning lookup)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print actions without executing")

	rootCmd.AddCommand(cmd)
}

// resolveDays validates the date selection and expands it into the list of
// civil days to process. Argument errors surface here, before any external
// call is made.
func resolveDays(opts *runOptions, today jptime.CivilDate) ([]jptime.CivilDate, error) {
	selected := 0
	for _, on := range []bool{opts.yesterday, opts.date != "", opts.year != 0 || opts.month != 0, opts.monthToDate} {
		if on {
			selected++
		}
	}
	if selected == 0 {
		return nil, fmt.Errorf("no dates to process: use --yesterday, --date, --year/--month, or --month-to-date")
	}
	if selected > 1 {
		return nil, fmt.Errorf("--yesterday, --date, --year/--month and --month-to-date are mutually exclusive")
	}

	switch {
	case opts.yesterday:
		return []jptime.CivilDate{today.AddDays(-1)}, nil

	case opts.date != "":
		day, err := jptime.ParseCivilDate(opts.date)
		if err != nil {
			return nil, fmt.Errorf("--date must be in YYYY-MM-DD format: %w", err)
		}
		return []jptime.CivilDate{day}, nil

	case opts.monthToDate:
		days := make([]jptime.CivilDate, 0, today.Day)
		for d := 1; d <= today.Day; d++ {
			days = append(days, jptime.NewCivilDate(today.Year, int(today.Month), d))
		}
		return days, nil

	default:
		if opts.year == 0 || opts.month == 0 {
			return nil, fmt.Errorf("--year and --month must be given together")
		}
		if opts.month < 1 || opts.month > 12 {
			return nil, fmt.Errorf("invalid month: %d", opts.month)
		}
		total := jptime.DaysInMonth(opts.year, opts.month)
		days := make([]jptime.CivilDate, 0, total)
		for d := 1; d <= total; d++ {
			days = append(days, jptime.NewCivilDate(opts.year, opts.month, d))
		}
		return days, nil
	}
}

func runPipeline(cmd *cobra.Command, opts *runOptions) error {
	today := jptime.DateOf(time.Now())
	days, err := resolveDays(opts, today)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	// One spreadsheet per month; provision from the first day unless an
	// explicit id was given.
	sheetID := opts.sheetID
	if sheetID == "" {
		first := days[0]
		sheetID, err = a.provisioner().GetOrCreate(ctx, first.Year, int(first.Month), opts.dryRun)
		if err != nil {
			return fmt.Errorf("resolve spreadsheet for %s: %w", first.MonthKey(), err)
		}
	}

	a.log.Infof("processing %d date(s) into sheet %s (dry run: %v)", len(days), sheetID, opts.dryRun)

	p := a.newPipeline()
	res, runErr := p.RunDays(ctx, days, sheetID, opts.dryRun)
	a.log.Infof("completed: %d/%d dates processed successfully", res.Completed, res.Total)
	return runErr
}
