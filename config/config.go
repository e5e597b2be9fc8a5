package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"arcadeboard/adapters/redis"
	"arcadeboard/adapters/sqlx"
	"arcadeboard/integrations/printful"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Storage adapter names.
const (
	AdapterAuto   = "auto"
	AdapterMemory = "memory"
	AdapterSQL    = "sql"
	AdapterRedis  = "redis"
	AdapterFile   = "file"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"ARCADEBOARD_ENV"`
	Profile     string      `json:"profile" env:"ARCADEBOARD_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Metrics and monitoring
	Metrics MetricsConfig `json:"metrics"`

	// Merch catalog proxy
	Catalog printful.Config `json:"catalog"`

	// Outgoing event notifications
	Webhooks WebhookConfig `json:"webhooks"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"ARCADEBOARD_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"ARCADEBOARD_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"ARCADEBOARD_SERVER_CORS_ORIGIN"`
	MaxLimit          int           `json:"max_limit" env:"ARCADEBOARD_SERVER_MAX_LIMIT"`
	MaxBodyBytes      int64         `json:"max_body_bytes" env:"ARCADEBOARD_SERVER_MAX_BODY_BYTES"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"ARCADEBOARD_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"ARCADEBOARD_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"ARCADEBOARD_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"ARCADEBOARD_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"ARCADEBOARD_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds storage adapter configuration
type StorageConfig struct {
	Adapter     string       `json:"adapter" env:"ARCADEBOARD_STORAGE_ADAPTER"`
	AutoMigrate bool         `json:"auto_migrate" env:"ARCADEBOARD_STORAGE_AUTO_MIGRATE"`
	Redis       redis.Config `json:"redis,omitempty"`
	SQL         sqlx.Config  `json:"sql,omitempty"`
	File        FileConfig   `json:"file,omitempty"`
}

// ResolvedAdapter returns the adapter to build. "auto" picks sql when a DSN
// is configured and memory otherwise.
func (s StorageConfig) ResolvedAdapter() string {
	if s.Adapter != AdapterAuto {
		return s.Adapter
	}
	if strings.TrimSpace(s.SQL.DSN) != "" {
		return AdapterSQL
	}
	return AdapterMemory
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"ARCADEBOARD_STORAGE_FILE_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"ARCADEBOARD_LOG_LEVEL"`
	Format     string            `json:"format" env:"ARCADEBOARD_LOG_FORMAT"`
	Output     string            `json:"output" env:"ARCADEBOARD_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty" env:"ARCADEBOARD_LOG_ATTRIBUTES"`
}

// MetricsConfig holds metrics and monitoring configuration
type MetricsConfig struct {
	Enabled       bool   `json:"enabled" env:"ARCADEBOARD_METRICS_ENABLED"`
	Address       string `json:"address" env:"ARCADEBOARD_METRICS_ADDR"`
	Path          string `json:"path" env:"ARCADEBOARD_METRICS_PATH"`
	CollectSystem bool   `json:"collect_system" env:"ARCADEBOARD_METRICS_COLLECT_SYSTEM"`
}

// WebhookConfig lists endpoints that receive submission events.
type WebhookConfig struct {
	Endpoints []string      `json:"endpoints,omitempty" env:"ARCADEBOARD_WEBHOOK_ENDPOINTS"`
	Timeout   time.Duration `json:"timeout" env:"ARCADEBOARD_WEBHOOK_TIMEOUT"`
}

// Load loads configuration from environment variables and validates it.
// Outside production a .env file in the working directory is read first;
// variables already set in the process environment take precedence.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads .env unless ARCADEBOARD_ENV says production. A missing
// file is not an error.
func loadDotEnv(paths ...string) error {
	if Environment(os.Getenv("ARCADEBOARD_ENV")) == EnvProduction {
		return nil
	}
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile reads a JSON config file over the defaults. Environment
// variables still override values from the file.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			MaxLimit:          100,
			MaxBodyBytes:      1 << 20,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: AdapterAuto,
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/arcadeboard.json",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			Address:       ":9090",
			Path:          "/metrics",
			CollectSystem: true,
		},
		Catalog: printful.DefaultConfig(),
		Webhooks: WebhookConfig{
			Timeout: 2 * time.Second,
		},
	}
}

// Validate checks every section and reports all problems at once, prefixed
// with the section name.
func (c *Config) Validate() error {
	var p problems
	if c.Environment == "" {
		p.add("environment cannot be empty")
	}
	sections := []struct {
		name  string
		check func() error
	}{
		{"server", c.Server.Validate},
		{"storage", c.Storage.Validate},
		{"logging", c.Logging.Validate},
		{"metrics", c.Metrics.Validate},
		{"webhooks", c.Webhooks.Validate},
	}
	for _, s := range sections {
		if err := s.check(); err != nil {
			p.add("%s config: %v", s.name, err)
		}
	}
	return p.err()
}

// String renders the config as indented JSON with credentials redacted.
func (c *Config) String() string {
	cfg := *c
	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}
	if cfg.Catalog.Token != "" {
		cfg.Catalog.Token = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
