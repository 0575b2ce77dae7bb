package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/automail/analytics-pipeline/internal/jptime"
)

func init() {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run as a daemon, reconciling yesterday's data on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}

			engine := cron.New(cron.WithLocation(jptime.JST))
			_, err = engine.AddFunc(a.cfg.CronSpec, func() {
				jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
				defer cancel()

				yesterday := jptime.DateOf(time.Now()).AddDays(-1)
				sheetID, err := a.provisioner().GetOrCreate(jobCtx, yesterday.Year, int(yesterday.Month), false)
				if err != nil {
					a.log.Errorf("[ERROR] scheduled provisioning failed for %s: %v", yesterday.MonthKey(), err)
					return
				}
				if err := a.newPipeline().RunDay(jobCtx, yesterday, sheetID, false); err != nil {
					a.log.Errorf("[ERROR] scheduled run failed for %s: %v", yesterday, err)
				}
			})
			if err != nil {
				return err
			}

			engine.Start()
			a.log.Infof("scheduler started with spec %q", a.cfg.CronSpec)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			a.log.Info("shutting down scheduler...")
			<-engine.Stop().Done()
			a.log.Info("scheduler stopped.")
			return nil
		},
	}

	rootCmd.AddCommand(cmd)
}
