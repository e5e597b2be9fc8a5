package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"arcadeboard/adapters/sqlx"
)

// problems collects validation failures for one config section.
type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

// oneOf records a problem unless value is in allowed.
func (p *problems) oneOf(name, value string, allowed ...string) {
	if !slices.Contains(allowed, value) {
		p.add("%s must be one of: %s", name, strings.Join(allowed, ", "))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New(strings.Join(p, "; "))
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var p problems
	if s.Address == "" {
		p.add("address cannot be empty")
	}
	for name, d := range map[string]int64{
		"read_timeout":        int64(s.ReadTimeout),
		"write_timeout":       int64(s.WriteTimeout),
		"idle_timeout":        int64(s.IdleTimeout),
		"read_header_timeout": int64(s.ReadHeaderTimeout),
		"shutdown_timeout":    int64(s.ShutdownTimeout),
	} {
		if d <= 0 {
			p.add("%s must be positive", name)
		}
	}
	if s.MaxLimit < 0 {
		p.add("max_limit cannot be negative")
	}
	if s.MaxBodyBytes < 0 {
		p.add("max_body_bytes cannot be negative")
	}
	slices.Sort(p)
	return p.err()
}

// Validate validates storage configuration. Only the selected adapter's
// section has to be complete.
func (s *StorageConfig) Validate() error {
	var p problems
	p.oneOf("adapter", s.Adapter, AdapterAuto, AdapterMemory, AdapterRedis, AdapterSQL, AdapterFile)

	switch s.Adapter {
	case AdapterFile:
		if strings.TrimSpace(s.File.Path) == "" {
			p.add("file config: path cannot be empty")
		}
	case AdapterSQL:
		if strings.TrimSpace(s.SQL.DSN) == "" {
			p.add("sql config: dsn cannot be empty (set DATABASE_URL)")
		}
	case AdapterRedis:
		if s.Redis.Addr == "" {
			p.add("redis config: addr cannot be empty")
		}
	}

	if s.SQL.Driver != "" {
		p.oneOf("sql config: driver", string(s.SQL.Driver), string(sqlx.DriverPostgres), string(sqlx.DriverMySQL))
	}
	return p.err()
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var p problems
	p.oneOf("level", l.Level, "debug", "info", "warn", "error")
	p.oneOf("format", l.Format, "json", "text")
	p.oneOf("output", l.Output, "stdout", "stderr")
	return p.err()
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	if !m.Enabled {
		return nil
	}
	var p problems
	if m.Address == "" {
		p.add("address cannot be empty when metrics are enabled")
	}
	if !strings.HasPrefix(m.Path, "/") {
		p.add("path must start with / when metrics are enabled")
	}
	return p.err()
}

// Validate requires absolute http(s) endpoints and a usable timeout.
func (w *WebhookConfig) Validate() error {
	var p problems
	for i, ep := range w.Endpoints {
		u, err := url.Parse(strings.TrimSpace(ep))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			p.add("endpoints[%d] must be an absolute http(s) URL", i)
		}
	}
	if len(w.Endpoints) > 0 && w.Timeout <= 0 {
		p.add("timeout must be positive when endpoints are set")
	}
	return p.err()
}
