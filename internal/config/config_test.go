package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/domain"
)

// clearEnv blanks every key Load reads so a stray .env or shell export
// cannot leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATA_DIR", "LOG_LEVEL", "LOG_PRETTY", "HTTP_PORT",
		"READ_TOKEN", "INVEST_API_URL", "INVEST_API_TIMEOUT", "INVEST_RATE_LIMIT",
		"STORE_DRIVER", "STORE_DSN",
		"INSTRUMENTS_TABLE", "CANDLES_TABLE", "CANDLE_FIGIS", "CANDLE_INTERVAL", "CANDLE_LOOKBACK_DAYS",
		"SYNC_SCHEDULE", "BACKUP_SCHEDULE", "MAINTENANCE_SCHEDULE", "RUN_RETENTION_DAYS",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
		"BACKUP_ENDPOINT", "BACKUP_REGION", "BACKUP_BUCKET", "BACKUP_ACCESS_KEY_ID",
		"BACKUP_SECRET_ACCESS_KEY", "BACKUP_PREFIX", "BACKUP_RETAIN",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("DATA_DIR", tmpDir)

	cfg, err := Load()
	require.NoError(t, err)

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, absPath, cfg.DataDir)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(absPath, "tinkoff.db"), cfg.Store.DSN)
	assert.Equal(t, "instruments", cfg.Sync.InstrumentsTable)
	assert.Equal(t, "candles", cfg.Sync.CandlesTable)
	assert.Equal(t, []string{"BBG000HS77T5"}, cfg.Sync.CandleFigis)
	assert.Equal(t, domain.CandleInterval1Min, cfg.Sync.CandleInterval)
	assert.Equal(t, 365*24*time.Hour, cfg.Sync.CandleLookback)
	assert.Equal(t, 30*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Provider.RateLimit)
	assert.Equal(t, "0 0 3 * * *", cfg.Sync.MaintenanceSchedule)
	assert.Equal(t, 90*24*time.Hour, cfg.Sync.RunRetention)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Backup.Enabled())
	assert.Error(t, cfg.RequireToken())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("READ_TOKEN", "t.abc")
	t.Setenv("CANDLE_FIGIS", " BBG000HS77T5, ,BBG004730N88 ")
	t.Setenv("CANDLE_INTERVAL", "1h")
	t.Setenv("CANDLE_LOOKBACK_DAYS", "30")
	t.Setenv("INVEST_RATE_LIMIT", "1s")
	t.Setenv("STORE_DRIVER", "POSTGRES")
	t.Setenv("STORE_DSN", "postgres://localhost/tinkoff")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BACKUP_BUCKET", "snapshots")
	t.Setenv("BACKUP_ACCESS_KEY_ID", "id")
	t.Setenv("BACKUP_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.RequireToken())
	assert.Equal(t, []string{"BBG000HS77T5", "BBG004730N88"}, cfg.Sync.CandleFigis)
	assert.Equal(t, domain.CandleIntervalHour, cfg.Sync.CandleInterval)
	assert.Equal(t, 30*24*time.Hour, cfg.Sync.CandleLookback)
	assert.Equal(t, time.Second, cfg.Provider.RateLimit)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/tinkoff", cfg.Store.DSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Backup.Enabled())
}

func TestLoad_InvalidInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("CANDLE_INTERVAL", "3m")

	_, err := Load()
	assert.ErrorContains(t, err, "CANDLE_INTERVAL")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store: StoreConfig{Driver: DriverSQLite, DSN: "x.db"},
			Sync: SyncConfig{
				InstrumentsTable: "instruments",
				CandlesTable:     "candles",
				CandleLookback:   time.Hour,
			},
			Kafka: KafkaConfig{Topic: "runs"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, true},
		{"postgres without dsn", func(c *Config) { c.Store = StoreConfig{Driver: DriverPostgres} }, true},
		{"empty table", func(c *Config) { c.Sync.CandlesTable = "" }, true},
		{"zero lookback", func(c *Config) { c.Sync.CandleLookback = 0 }, true},
		{"brokers without topic", func(c *Config) { c.Kafka = KafkaConfig{Brokers: []string{"k:9092"}} }, true},
		{"negative retain", func(c *Config) { c.Backup.Retain = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
