package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends selectable through STORAGE_BACKEND.
const (
	BackendBigQuery = "bigquery"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds every runtime setting of the cli and worker binaries.
type Config struct {
	Env       string
	LogLevel  string
	LogFormat string

	StorageBackend string
	GCPProjectID   string
	BQDataset      string
	DatabaseURL    string

	GCSBucket string

	GeminiAPIKey string
	GeminiModel  string

	ResendAPIKey string
	MailerSender string

	ReportSchedule string
	ReportTimezone string

	NotionToken       string
	NotionReportsDBID string
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads an optional .env file and then the process environment without
// validating. Tools that take overrides from flags validate on their own.
// A missing .env is not an error; production relies on real env variables.
func FromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:       getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendBigQuery)),
		GCPProjectID:   getEnv("GCP_PROJECT_ID", ""),
		BQDataset:      getEnv("BQ_DATASET", "finance"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		GCSBucket: getEnv("GCS_BUCKET", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		MailerSender: getEnv("MAILER_SENDER", "FinGenius <reports@fingenius.app>"),

		ReportSchedule: getEnv("REPORT_SCHEDULE", "0 0 1 * *"),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "UTC"),

		NotionToken:       getEnv("NOTION_TOKEN", ""),
		NotionReportsDBID: getEnv("NOTION_REPORTS_DB_ID", ""),
	}
}

// Validate checks enum values and the settings required by the chosen backend.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendBigQuery:
		if c.GCPProjectID == "" {
			return fmt.Errorf("config: GCP_PROJECT_ID is required for the bigquery backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: unknown LOG_FORMAT %q", c.LogFormat)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves REPORT_TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid REPORT_TIMEZONE %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}

// getEnv returns the variable's value or fallback when it is unset.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
