package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ARCADEBOARD_STORAGE_SQL_DSN", "")

	// Test loading default config
	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify defaults
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, AdapterAuto, cfg.Storage.Adapter)
	assert.Equal(t, AdapterMemory, cfg.Storage.ResolvedAdapter())
	assert.Equal(t, "/api", cfg.Server.PathPrefix)
	assert.Equal(t, 100, cfg.Server.MaxLimit)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadDatabaseURLSelectsSQL(t *testing.T) {
	t.Setenv("ARCADEBOARD_STORAGE_SQL_DSN", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/arcade?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/arcade?sslmode=disable", cfg.Storage.SQL.DSN)
	assert.Equal(t, AdapterSQL, cfg.Storage.ResolvedAdapter())
	assert.NotContains(t, cfg.String(), "u:p@db")
}

func TestEnvNamePrecedence(t *testing.T) {
	t.Setenv("ARCADEBOARD_STORAGE_SQL_DSN", "mysql://first")
	t.Setenv("DATABASE_URL", "postgres://second")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql://first", cfg.Storage.SQL.DSN)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ARCADEBOARD_SERVER_MAX_LIMIT", "25")
	t.Setenv("ARCADEBOARD_WEBHOOK_ENDPOINTS", "https://a.example/hook, https://b.example/hook")
	t.Setenv("ARCADEBOARD_LOG_ATTRIBUTES", "service=arcadeboard,region=eu")
	t.Setenv("ARCADEBOARD_SERVER_READ_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Server.MaxLimit)
	assert.Equal(t, []string{"https://a.example/hook", "https://b.example/hook"}, cfg.Webhooks.Endpoints)
	assert.Equal(t, "eu", cfg.Logging.Attributes["region"])
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)

	t.Setenv("ARCADEBOARD_SERVER_MAX_LIMIT", "many")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ARCADEBOARD_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ARCADEBOARD_TEST_DOTENV") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("ARCADEBOARD_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestStorageValidation(t *testing.T) {
	s := DefaultConfig().Storage
	s.Adapter = AdapterSQL
	assert.Error(t, s.Validate())

	s.SQL.DSN = "postgres://x"
	assert.NoError(t, s.Validate())

	s.Adapter = "mongo"
	assert.Error(t, s.Validate())
}

func TestWebhookValidation(t *testing.T) {
	w := WebhookConfig{Endpoints: []string{"ftp://nope"}, Timeout: time.Second}
	assert.Error(t, w.Validate())
	w.Endpoints = []string{"https://ok.example/hook"}
	assert.NoError(t, w.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arcadeboard.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"environment": "testing",
		"server": {"address": ":9090"},
		"storage": {"adapter": "file", "file": {"path": "/tmp/board.json"}}
	}`), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, EnvTesting, cfg.Environment)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, AdapterFile, cfg.Storage.ResolvedAdapter())
	assert.Equal(t, "/tmp/board.json", cfg.Storage.File.Path)
	// Untouched sections keep their defaults.
	assert.Equal(t, "/api", cfg.Server.PathPrefix)

	t.Setenv("ARCADEBOARD_SERVER_ADDR", ":7070")
	cfg, err = LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Address, "env overrides file")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty environment", mutate: func(c *Config) { c.Environment = "" }, expectError: "environment cannot be empty"},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, expectError: "read_timeout must be positive"},
		{name: "negative max limit", mutate: func(c *Config) { c.Server.MaxLimit = -1 }, expectError: "max_limit cannot be negative"},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, expectError: "level must be one of"},
		{name: "log to file", mutate: func(c *Config) { c.Logging.Output = "/var/log/x" }, expectError: "output must be one of"},
		{name: "metrics path", mutate: func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Path = "metrics"
		}, expectError: "path must start with /"},
		{name: "metrics disabled ignores path", mutate: func(c *Config) { c.Metrics.Path = "" }},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Storage.Adapter = AdapterRedis
			c.Storage.Redis.Addr = ""
		}, expectError: "redis config: addr cannot be empty"},
		{name: "file without path", mutate: func(c *Config) {
			c.Storage.Adapter = AdapterFile
			c.Storage.File.Path = " "
		}, expectError: "file config: path cannot be empty"},
		{name: "unknown sql driver", mutate: func(c *Config) { c.Storage.SQL.Driver = "sqlite" }, expectError: "driver must be one of"},
		{name: "several problems", mutate: func(c *Config) {
			c.Server.Address = ""
			c.Logging.Format = "xml"
		}, expectError: "server config: address cannot be empty; logging config: format must be one of: json, text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}

func TestProfiles(t *testing.T) {
	tests := []struct {
		name         string
		profileName  string
		expectConfig bool
		environment  Environment
	}{
		{"development", "development", true, EnvDevelopment},
		{"testing", "testing", true, EnvTesting},
		{"staging", "staging", true, EnvStaging},
		{"production", "production", true, EnvProduction},
		{"unknown", "unknown", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadProfile(tt.profileName)
			if tt.expectConfig {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				assert.Equal(t, tt.environment, cfg.Environment)
			} else {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			}
		})
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("PRINTFUL_API_TOKEN", "tok")
	t.Setenv("DATABASE_URL", "postgres://secret")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadSecretsFromEnv(context.Background()))
	assert.Equal(t, "tok", cfg.Catalog.Token)
	assert.Equal(t, "postgres://secret", cfg.Storage.SQL.DSN)
	assert.NotContains(t, cfg.String(), "tok\"")
}

func TestSecrets(t *testing.T) {
	store := NewEnvironmentSecretStore()
	ctx := context.Background()
	t.Setenv("ARCADEBOARD_TEST_SECRET", "s3cret")

	value, err := store.Get(ctx, "ARCADEBOARD_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = store.Get(ctx, "ARCADEBOARD_TEST_SECRET_MISSING")
	assert.Error(t, err)

	assert.Equal(t, "fallback", store.GetWithDefault(ctx, "ARCADEBOARD_TEST_SECRET_MISSING", "fallback"))
	assert.Equal(t, "s3cret", store.GetWithDefault(ctx, "ARCADEBOARD_TEST_SECRET", "fallback"))
}

func TestValidateConfigPath(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "ok.json")
	txtPath := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(jsonPath, []byte("{}"), 0o600))
	require.NoError(t, os.WriteFile(txtPath, []byte("{}"), 0o600))

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"json file", jsonPath, false},
		{"empty path", "", true},
		{"not json", txtPath, true},
		{"missing", filepath.Join(dir, "missing.json"), true},
		{"path traversal", "../../../etc/passwd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
