// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/investsync/internal/domain"
)

// Store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the local store and run journal (always absolute)
	LogLevel  string
	LogPretty bool
	Port      int

	Provider ProviderConfig
	Store    StoreConfig
	Sync     SyncConfig
	Kafka    KafkaConfig
	Backup   BackupConfig
}

// ProviderConfig holds brokerage gateway settings
type ProviderConfig struct {
	Token     string
	BaseURL   string
	Timeout   time.Duration
	RateLimit time.Duration
}

// StoreConfig selects the columnar store
type StoreConfig struct {
	Driver string
	DSN    string // sqlite: file path, postgres: connection string
}

// SyncConfig holds target tables and candle settings
type SyncConfig struct {
	InstrumentsTable string
	CandlesTable     string
	CandleFigis      []string
	CandleInterval   domain.CandleInterval
	CandleLookback   time.Duration
	Schedule         string // cron expression with seconds; empty disables scheduled syncs
	BackupSchedule   string

	MaintenanceSchedule string
	RunRetention        time.Duration // run journal entries older than this are pruned
}

// KafkaConfig enables run event publishing when Brokers is non-empty
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// BackupConfig holds S3-compatible snapshot upload settings
type BackupConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	Retain          int
}

// Enabled reports whether snapshot uploads are configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != "" && b.AccessKeyID != "" && b.SecretAccessKey != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir, err := filepath.Abs(getEnv("DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	interval, err := domain.ParseCandleInterval(getEnv("CANDLE_INTERVAL", string(domain.CandleInterval1Min)))
	if err != nil {
		return nil, fmt.Errorf("invalid CANDLE_INTERVAL: %w", err)
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite))
	dsn := getEnv("STORE_DSN", "")
	if dsn == "" && driver == DriverSQLite {
		dsn = filepath.Join(dataDir, "tinkoff.db")
	}

	cfg := &Config{
		DataDir:   dataDir,
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
		Port:      getEnvAsInt("HTTP_PORT", 8080),
		Provider: ProviderConfig{
			Token:     getEnv("READ_TOKEN", ""),
			BaseURL:   getEnv("INVEST_API_URL", ""),
			Timeout:   getEnvAsDuration("INVEST_API_TIMEOUT", 30*time.Second),
			RateLimit: getEnvAsDuration("INVEST_RATE_LIMIT", 200*time.Millisecond),
		},
		Store: StoreConfig{
			Driver: driver,
			DSN:    dsn,
		},
		Sync: SyncConfig{
			InstrumentsTable: getEnv("INSTRUMENTS_TABLE", "instruments"),
			CandlesTable:     getEnv("CANDLES_TABLE", "candles"),
			CandleFigis:      getEnvAsList("CANDLE_FIGIS", []string{"BBG000HS77T5"}),
			CandleInterval:   interval,
			CandleLookback:   time.Duration(getEnvAsInt("CANDLE_LOOKBACK_DAYS", 365)) * 24 * time.Hour,
			Schedule:         getEnv("SYNC_SCHEDULE", ""),
			BackupSchedule:   getEnv("BACKUP_SCHEDULE", ""),

			MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
			RunRetention:        time.Duration(getEnvAsInt("RUN_RETENTION_DAYS", 90)) * 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS", nil),
			Topic:   getEnv("KAFKA_TOPIC", "investsync.runs"),
		},
		Backup: BackupConfig{
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("BACKUP_PREFIX", "investsync/"),
			Retain:          getEnvAsInt("BACKUP_RETAIN", 7),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	// The token is checked where a provider client is built; migrate and
	// serve-only runs work without it.
	switch c.Store.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("STORE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Sync.InstrumentsTable == "" || c.Sync.CandlesTable == "" {
		return fmt.Errorf("table names must not be empty")
	}
	if c.Sync.CandleLookback <= 0 {
		return fmt.Errorf("CANDLE_LOOKBACK_DAYS must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.Backup.Retain < 0 {
		return fmt.Errorf("BACKUP_RETAIN must not be negative")
	}
	return nil
}

// RequireToken fails when no provider credential is configured.
func (c *Config) RequireToken() error {
	if c.Provider.Token == "" {
		return fmt.Errorf("READ_TOKEN is required")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
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
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
