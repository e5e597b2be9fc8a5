package config

import (
	"context"
	"fmt"
	"os"
)

// SecretStore resolves secret values by key.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	GetWithDefault(ctx context.Context, key, def string) string
}

// EnvironmentSecretStore reads secrets from process environment variables.
type EnvironmentSecretStore struct{}

func NewEnvironmentSecretStore() *EnvironmentSecretStore { return &EnvironmentSecretStore{} }

func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("secret %s not set", key)
	}
	return v, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(ctx context.Context, key, def string) string {
	if v, err := s.Get(ctx, key); err == nil {
		return v
	}
	return def
}

// Secret keys consulted by LoadSecrets.
const (
	SecretDatabaseURL   = "DATABASE_URL"
	SecretRedisPassword = "ARCADEBOARD_REDIS_PASSWORD"
	SecretPrintfulToken = "PRINTFUL_API_TOKEN"
)

// LoadSecrets fills empty credentials from store. Values already present in
// the config are kept.
func (c *Config) LoadSecrets(ctx context.Context, store SecretStore) error {
	if c.Storage.SQL.DSN == "" {
		c.Storage.SQL.DSN = store.GetWithDefault(ctx, SecretDatabaseURL, "")
	}
	if c.Storage.Redis.Password == "" {
		c.Storage.Redis.Password = store.GetWithDefault(ctx, SecretRedisPassword, "")
	}
	if c.Catalog.Token == "" {
		c.Catalog.Token = store.GetWithDefault(ctx, SecretPrintfulToken, "")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration after loading secrets: %w", err)
	}
	return nil
}

// LoadSecretsFromEnv is LoadSecrets backed by the process environment.
func (c *Config) LoadSecretsFromEnv(ctx context.Context) error {
	return c.LoadSecrets(ctx, NewEnvironmentSecretStore())
}
