package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.False(t, cfg.IsDurable())
	assert.Equal(t, 60*time.Second, cfg.CircuitBreaker.Timeout)
}

func TestLoadConfigFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodi.yaml")
	writeFile(t, path, `
serverAddress: ":9000"
storageDriver: sqlite
sqlitePath: /tmp/journal.db
logLevel: debug
timezone: UTC
circuitBreaker:
  timeout: 5s
  failureThreshold: 0.5
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_ADDRESS", ":9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.ServerAddress, "environment overrides file")
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/journal.db", cfg.SQLitePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.CircuitBreaker.Timeout)
	assert.Equal(t, 0.5, cfg.CircuitBreaker.FailureThreshold)
	assert.Equal(t, uint32(5), cfg.CircuitBreaker.MaxRequests, "unset keys keep defaults")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, time.UTC, cfg.Location())
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown driver", func(c *Config) { c.StorageDriver = "mongo" }, false},
		{"postgres without dsn", func(c *Config) { c.StorageDriver = DriverPostgres }, false},
		{"postgres with dsn", func(c *Config) {
			c.StorageDriver = DriverPostgres
			c.PostgresDSN = "postgres://localhost/moodi"
		}, true},
		{"dynamodb without table", func(c *Config) {
			c.StorageDriver = DriverDynamoDB
			c.DynamoDBTable = ""
		}, false},
		{"sqlite without path", func(c *Config) {
			c.StorageDriver = DriverSQLite
			c.SQLitePath = ""
		}, false},
		{"bad zone", func(c *Config) { c.Timezone = "Mars/Olympus" }, false},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"bad threshold", func(c *Config) { c.CircuitBreaker.FailureThreshold = 1.5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestLevelWatcherAppliesLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodi.yaml")
	writeFile(t, path, "logLevel: info\n")
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	w, err := NewLevelWatcher(path, level, zap.NewNop())
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	writeFile(t, path, "logLevel: debug\n")

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 5*time.Second, 20*time.Millisecond)
}

func TestLevelWatcherKeepsLevelOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moodi.yaml")
	writeFile(t, path, "logLevel: warn\n")
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	w, err := NewLevelWatcher(path, level, zap.NewNop())
	require.NoError(t, err)

	writeFile(t, path, "logLevel: [not, a, level]\n")
	w.reload()

	assert.Equal(t, zapcore.WarnLevel, level.Level())
}
