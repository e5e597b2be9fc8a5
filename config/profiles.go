package config

import (
	"fmt"
	"time"
)

// LoadProfile returns the preset configuration for a named deployment
// profile. Environment variables are not applied; callers that want them
// should use Load or LoadFromFile.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Profile = name

	switch Environment(name) {
	case EnvDevelopment:
		cfg.Environment = EnvDevelopment
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"

	case EnvTesting:
		cfg.Environment = EnvTesting
		cfg.Storage.Adapter = AdapterMemory
		cfg.Logging.Level = "warn"
		cfg.Server.ShutdownTimeout = 5 * time.Second

	case EnvStaging:
		cfg.Environment = EnvStaging
		cfg.Storage.AutoMigrate = true
		cfg.Metrics.Enabled = true

	case EnvProduction:
		cfg.Environment = EnvProduction
		cfg.Storage.Adapter = AdapterSQL
		cfg.Metrics.Enabled = true
		cfg.Server.CORSOrigin = ""

	default:
		return nil, fmt.Errorf("unknown profile %q", name)
	}

	return cfg, nil
}
