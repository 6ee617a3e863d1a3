package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"moodi-backend/pkg/utils"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`
	Timezone      string `yaml:"timezone"`

	// Storage configuration
	StorageDriver string `yaml:"storageDriver"`
	SQLitePath    string `yaml:"sqlitePath"`
	PostgresDSN   string `yaml:"postgresDSN"`

	// AWS configuration
	AWSRegion     string `yaml:"awsRegion"`
	DynamoDBTable string `yaml:"dynamodbTable"`
	IndexName     string `yaml:"dynamodbIndex"`

	// Logging
	LogLevel string `yaml:"logLevel"`

	// Feature flags
	EnableMetrics bool     `yaml:"enableMetrics"`
	EnableTracing bool     `yaml:"enableTracing"`
	EnableCORS    bool     `yaml:"enableCORS"`
	CORSOrigins   []string `yaml:"corsOrigins"`
	OTLPEndpoint  string   `yaml:"otlpEndpoint"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`

	// ConfigFile is the YAML file the configuration was overlaid from, if any
	ConfigFile string `yaml:"-"`
}

// CircuitBreakerConfig configures the breaker wrapped around durable stores
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		StorageDriver: DriverMemory,
		SQLitePath:    "data/moodi.db",
		AWSRegion:     "us-west-2",
		DynamoDBTable: "moodi",
		IndexName:     "GSI1",
		LogLevel:      "info",
		EnableCORS:    true,
		CORSOrigins:   []string{"*"},
		OTLPEndpoint:  "localhost:4317",
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      5,
			Interval:         30 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.8,
			MinRequests:      5,
		},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// CONFIG_FILE and then environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Timezone = getEnv("TIMEZONE", cfg.Timezone)

	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)

	cfg.AWSRegion = getEnv("AWS_REGION", cfg.AWSRegion)
	cfg.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", cfg.DynamoDBTable))
	cfg.IndexName = getEnv("DYNAMODB_INDEX", cfg.IndexName)

	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableTracing = getEnvBool("ENABLE_TRACING", cfg.EnableTracing)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.OTLPEndpoint = getEnv("OTLP_ENDPOINT", cfg.OTLPEndpoint)

	cb := &cfg.CircuitBreaker
	cb.Enabled = getEnvBool("CIRCUIT_BREAKER_ENABLED", cb.Enabled)
	cb.MaxRequests = uint32(getEnvInt("CIRCUIT_BREAKER_MAX_REQUESTS", int(cb.MaxRequests)))
	cb.Interval = getEnvDuration("CIRCUIT_BREAKER_INTERVAL", cb.Interval)
	cb.Timeout = getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", cb.Timeout)
	cb.FailureThreshold = getEnvFloat("CIRCUIT_BREAKER_FAILURE_THRESHOLD", cb.FailureThreshold)
	cb.MinRequests = uint32(getEnvInt("CIRCUIT_BREAKER_MIN_REQUESTS", int(cb.MinRequests)))
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
		}
	case DriverDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required for the dynamodb driver")
		}
		if c.IndexName == "" {
			return fmt.Errorf("DYNAMODB_INDEX is required for the dynamodb driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if _, err := utils.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if c.CircuitBreaker.FailureThreshold <= 0 || c.CircuitBreaker.FailureThreshold > 1 {
		return fmt.Errorf("circuit breaker failure threshold must be in (0,1]")
	}

	return nil
}

// Location resolves the configured server time zone
func (c *Config) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDurable reports whether records survive a restart
func (c *Config) IsDurable() bool {
	return c.StorageDriver != DriverMemory
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
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

// getEnvList splits a comma separated variable
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
