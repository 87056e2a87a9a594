package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Preprocessor modes
const (
	PreprocessorScript = "script"
	PreprocessorNative = "native"
	PreprocessorNone   = "none"
)

// Summary modes
const (
	SummaryLegacy    = "legacy"
	SummaryCorrected = "corrected"
)

// Store types
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	// Input
	InputPath         string
	Preprocessor      string
	PreprocessCommand string
	PreprocessDir     string
	MergeInputs       []string

	// Output
	OutputDir   string
	SummaryMode string
	MetricsFile string
	LogLevel    string

	// Storage
	StorageEnabled bool
	StoreType      string
	DatabaseURL    string
	SQLitePath     string

	// Collection
	Kubeconfig    string
	PrometheusURL string
	ExportWindow  time.Duration
	ExportStep    time.Duration
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	return &Config{
		InputPath:         getEnv("USAGE_REPORT_INPUT", "sorted_merged.csv"),
		Preprocessor:      getEnv("USAGE_REPORT_PREPROCESSOR", PreprocessorScript),
		PreprocessCommand: getEnv("USAGE_REPORT_PREPROCESS_COMMAND", "bash merged_sort_csv.sh"),
		PreprocessDir:     getEnv("USAGE_REPORT_PREPROCESS_DIR", "."),
		MergeInputs:       getEnvList("USAGE_REPORT_MERGE_INPUTS", []string{"*.csv"}),
		OutputDir:         getEnv("USAGE_REPORT_OUTPUT_DIR", "container_reports"),
		SummaryMode:       getEnv("USAGE_REPORT_SUMMARY_MODE", SummaryLegacy),
		MetricsFile:       getEnv("USAGE_REPORT_METRICS_FILE", ""),
		LogLevel:          getEnv("USAGE_REPORT_LOG_LEVEL", "info"),
		StorageEnabled:    getEnvBool("STORAGE_ENABLED", false),
		StoreType:         getEnv("USAGE_REPORT_STORE", StoreSQLite),
		DatabaseURL:       getEnv("DATABASE_URL", "host=localhost port=5432 user=usage password=devpassword dbname=usagereports sslmode=disable"),
		SQLitePath:        getEnv("USAGE_REPORT_SQLITE_PATH", "usage-report.db"),
		Kubeconfig:        getEnv("KUBECONFIG", ""),
		PrometheusURL:     getEnv("PROMETHEUS_URL", "http://localhost:9090"),
		ExportWindow:      getEnvDuration("USAGE_REPORT_EXPORT_WINDOW", 24*time.Hour),
		ExportStep:        getEnvDuration("USAGE_REPORT_EXPORT_STEP", 5*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	switch c.Preprocessor {
	case PreprocessorScript:
		if strings.TrimSpace(c.PreprocessCommand) == "" {
			return fmt.Errorf("preprocess command must be set for the script preprocessor")
		}
	case PreprocessorNative:
		if len(c.MergeInputs) == 0 {
			return fmt.Errorf("merge inputs must be set for the native preprocessor")
		}
	case PreprocessorNone:
	default:
		return fmt.Errorf("unknown preprocessor %q (expected script, native, or none)", c.Preprocessor)
	}
	if c.SummaryMode != SummaryLegacy && c.SummaryMode != SummaryCorrected {
		return fmt.Errorf("unknown summary mode %q (expected legacy or corrected)", c.SummaryMode)
	}
	if c.StorageEnabled {
		switch c.StoreType {
		case StorePostgres:
			if c.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL must be set when the postgres store is enabled")
			}
		case StoreSQLite:
			if c.SQLitePath == "" {
				return fmt.Errorf("sqlite path must be set when the sqlite store is enabled")
			}
		default:
			return fmt.Errorf("unknown store %q (expected postgres or sqlite)", c.StoreType)
		}
	}
	if c.ExportStep <= 0 {
		return fmt.Errorf("export step must be positive")
	}
	if c.ExportWindow < c.ExportStep {
		return fmt.Errorf("export window must be at least one step")
	}
	return nil
}
