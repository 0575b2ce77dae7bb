package config

import (
	"fmt"
	"os"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the pipeline needs. It is built once at process
// start and threaded explicitly through each stage; no stage reads the
// environment on its own.
type Config struct {
	// Record store
	TableName string `validate:"required"`
	Region    string

	// Event log object storage
	BucketName   string `validate:"required"`
	EventsPrefix string

	// Spreadsheets
	ConfigSheetID   string // config spreadsheet holding templates/sheets tables
	DefaultSheetID  string // provisioning escape hatch when no template is configured
	CredentialsFile string

	// Local snapshot roots
	DataDir     string
	EventsDir   string
	RequestsDir string

	// Optional observability / notification
	QueueURL         string
	MetricsNamespace string

	// Daemon mode
	CronSpec string

	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*Config, error) {
	// godotenv.Load will not override existing env variables; a missing .env
	// file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		TableName:        os.Getenv("TABLE_NAME"),
		Region:           os.Getenv("REGION"),
		BucketName:       os.Getenv("BUCKET_NAME"),
		EventsPrefix:     os.Getenv("EVENTS_PREFIX"),
		ConfigSheetID:    os.Getenv("CONFIG_SHEET_ID"),
		DefaultSheetID:   os.Getenv("SHEET_ID"),
		CredentialsFile:  os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		DataDir:          os.Getenv("DATA_DIR"),
		EventsDir:        os.Getenv("EVENTS_DIR"),
		RequestsDir:      os.Getenv("REQUESTS_DIR"),
		QueueURL:         os.Getenv("COMPLETION_QUEUE_URL"),
		MetricsNamespace: os.Getenv("METRICS_NAMESPACE"),
		CronSpec:         os.Getenv("CRON_SPEC"),
		LogLevel:         strings.ToLower(os.Getenv("LOG_LEVEL")),
		Environment:      strings.ToLower(os.Getenv("ENVIRONMENT")),
	}

	if cfg.EventsPrefix == "" {
		cfg.EventsPrefix = "email-events"
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "service_account.json"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	if cfg.EventsDir == "" {
		cfg.EventsDir = "events"
	}
	if cfg.RequestsDir == "" {
		cfg.RequestsDir = "requests"
	}
	if cfg.CronSpec == "" {
		cfg.CronSpec = "0 2 * * *" // 02:00 daily, after the event logs land
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if err := validatorv10.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
