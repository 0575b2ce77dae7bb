// Package cli wires the cobra command surface of the pipeline binary.
package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/config"
	"github.com/automail/analytics-pipeline/internal/events"
	"github.com/automail/analytics-pipeline/internal/join"
	"github.com/automail/analytics-pipeline/internal/logger"
	"github.com/automail/analytics-pipeline/internal/pipeline"
	"github.com/automail/analytics-pipeline/internal/request"
	"github.com/automail/analytics-pipeline/internal/sheets"
)

// app holds the dependency graph shared by the commands. Construction
// happens once per invocation, after argument validation.
type app struct {
	cfg       *config.Config
	log       *logrus.Logger
	clients   *awsclient.AWSClients
	sheetsAPI sheets.API
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	clients, err := awsclient.NewAWSClients(ctx, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}

	sheetsAPI, err := sheets.NewService(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		clients:   clients,
		sheetsAPI: sheetsAPI,
	}, nil
}

func (a *app) newPipeline() *pipeline.Pipeline {
	deps := pipeline.Deps{
		Config:       a.cfg,
		Log:          a.log,
		Fetcher:      request.NewFetcher(a.clients.DynamoDB, a.cfg.TableName, a.log),
		Downloader:   events.NewDownloader(a.clients.S3, a.cfg.BucketName, a.cfg.EventsPrefix, a.log),
		Materializer: events.NewMaterializer(a.log),
		Engine:       join.NewEngine(a.log),
		Publisher:    sheets.NewPublisher(a.sheetsAPI, a.log),
	}
	if a.cfg.MetricsNamespace != "" {
		deps.Metrics = pipeline.NewReporter(a.clients.CloudWatch, a.cfg.MetricsNamespace)
	}
	if a.cfg.QueueURL != "" {
		deps.Notifier = awsclient.NewNotifier(a.clients.SQS, a.cfg.QueueURL)
	}
	return pipeline.New(deps)
}

func (a *app) provisioner() *sheets.Provisioner {
	store := sheets.NewConfigStore(a.sheetsAPI, a.cfg.ConfigSheetID, a.log)
	return sheets.NewProvisioner(store, a.sheetsAPI, a.cfg.DefaultSheetID, a.log)
}
