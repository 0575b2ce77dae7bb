package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/config"
	"github.com/automail/analytics-pipeline/internal/events"
	"github.com/automail/analytics-pipeline/internal/join"
	"github.com/automail/analytics-pipeline/internal/jptime"
	"github.com/automail/analytics-pipeline/internal/logger"
	"github.com/automail/analytics-pipeline/internal/pipeline"
	"github.com/automail/analytics-pipeline/internal/request"
	"github.com/automail/analytics-pipeline/internal/sheets"
)

// handleScheduledEvent runs yesterday's reconciliation when the EventBridge
// schedule fires. Returning an error lets the Lambda runtime surface the
// failed day.
func handleScheduledEvent(ctx context.Context, event lambdaevents.CloudWatchEvent) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	lg := logger.New(cfg.LogLevel, cfg.Environment)
	lg.Infof("scheduled trigger %s at %s", event.ID, event.Time)

	clients, err := awsclient.NewAWSClients(ctx, cfg.Region)
	if err != nil {
		return fmt.Errorf("init aws clients: %w", err)
	}
	sheetsAPI, err := sheets.NewService(ctx, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("init sheets client: %w", err)
	}

	yesterday := jptime.DateOf(time.Now()).AddDays(-1)

	store := sheets.NewConfigStore(sheetsAPI, cfg.ConfigSheetID, lg)
	provisioner := sheets.NewProvisioner(store, sheetsAPI, cfg.DefaultSheetID, lg)
	sheetID, err := provisioner.GetOrCreate(ctx, yesterday.Year, int(yesterday.Month), false)
	if err != nil {
		return fmt.Errorf("resolve spreadsheet for %s: %w", yesterday.MonthKey(), err)
	}

	deps := pipeline.Deps{
		Config:       cfg,
		Log:          lg,
		Fetcher:      request.NewFetcher(clients.DynamoDB, cfg.TableName, lg),
		Downloader:   events.NewDownloader(clients.S3, cfg.BucketName, cfg.EventsPrefix, lg),
		Materializer: events.NewMaterializer(lg),
		Engine:       join.NewEngine(lg),
		Publisher:    sheets.NewPublisher(sheetsAPI, lg),
	}
	if cfg.MetricsNamespace != "" {
		deps.Metrics = pipeline.NewReporter(clients.CloudWatch, cfg.MetricsNamespace)
	}
	if cfg.QueueURL != "" {
		deps.Notifier = awsclient.NewNotifier(clients.SQS, cfg.QueueURL)
	}

	return pipeline.New(deps).RunDay(ctx, yesterday, sheetID, false)
}

func main() {
	// If RUN_LOCAL=true, simulate a single scheduled event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		event := lambdaevents.CloudWatchEvent{
			ID:   "local-scheduled-event",
			Time: time.Now(),
		}
		if err := handleScheduledEvent(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(handleScheduledEvent)
}
