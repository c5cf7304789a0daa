package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Ingest    IngestConfig
	Analysis  AnalysisConfig
	Scheduler SchedulerConfig
	Sheets    SheetsConfig
	MongoDB   MongoDBConfig
	Notify    NotifyConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig locates the master workbook on disk.
type StoreConfig struct {
	MasterPath string
}

// IngestConfig describes where discrepancy workbooks arrive and where they
// are parked once committed.
type IngestConfig struct {
	InboxDir     string
	ProcessedDir string
}

// AnalysisConfig holds the inputs and outputs of the analysis stage.
type AnalysisConfig struct {
	AislePath string
	ReportDir string
}

// SchedulerConfig holds scheduler-related settings.
type SchedulerConfig struct {
	CronSchedule string
	Timezone     string
}

// SheetsConfig contains configuration for the optional Google Sheets source.
// Both fields empty disables the source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// MongoDBConfig holds settings for the optional run archive. An empty URI
// disables archiving.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// NotifyConfig points at the optional webhook that receives run summaries.
// An empty URL disables notifications.
type NotifyConfig struct {
	WebhookURL string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			MasterPath: getenvWithDefault("MASTER_WORKBOOK_PATH", "data/Registro_Zonales.xlsx"),
		},
		Ingest: IngestConfig{
			InboxDir:     getenvWithDefault("INBOX_DIR", "data/inbox"),
			ProcessedDir: getenvWithDefault("PROCESSED_DIR", "data/processed"),
		},
		Analysis: AnalysisConfig{
			AislePath: getenvWithDefault("AISLE_MASTER_PATH", "data/Maestro_Pasillos.xlsx"),
			ReportDir: getenvWithDefault("REPORT_DIR", "data/reports"),
		},
		Scheduler: SchedulerConfig{
			CronSchedule: getenvWithDefault("RUN_CRON_SCHEDULE", "0 * * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Santiago"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_INBOX_ID"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "zonales"),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Store.MasterPath == "" {
		return errors.New("MASTER_WORKBOOK_PATH must be provided")
	}

	switch {
	case c.Ingest.InboxDir == "":
		return errors.New("INBOX_DIR must be provided")
	case c.Ingest.ProcessedDir == "":
		return errors.New("PROCESSED_DIR must be provided")
	}

	if c.Analysis.ReportDir == "" {
		return errors.New("REPORT_DIR must be provided")
	}

	if c.Scheduler.CronSchedule == "" {
		return errors.New("RUN_CRON_SCHEDULE must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	// The sheets source needs both halves or neither.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_INBOX_ID must be provided together")
	}

	if c.MongoDB.URI != "" && c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided when MONGODB_URI is set")
	}

	return nil
}

// SheetsEnabled reports whether the Google Sheets source is configured.
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsPath != "" && c.Sheets.SpreadsheetID != ""
}

// ArchiveEnabled reports whether run reports should be archived in MongoDB.
func (c *Config) ArchiveEnabled() bool {
	return c.MongoDB.URI != ""
}

// NotifyEnabled reports whether run summaries should be posted to a webhook.
func (c *Config) NotifyEnabled() bool {
	return c.Notify.WebhookURL != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
