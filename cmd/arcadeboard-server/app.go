package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"arcadeboard/adapters/jsonfile"
	mem "arcadeboard/adapters/memory"
	redisAdapter "arcadeboard/adapters/redis"
	sqlxAdapter "arcadeboard/adapters/sqlx"
	"arcadeboard/analytics"
	"arcadeboard/api/httpapi"
	"arcadeboard/arcade"
	"arcadeboard/config"
	"arcadeboard/engine"
	"arcadeboard/integrations/printful"
	"arcadeboard/integrations/webhook"
	"arcadeboard/metrics"
	"arcadeboard/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Hub      *realtime.Hub
	Metrics  *metrics.Manager
	Activity *analytics.Activity
	Storage  engine.Storage
	Service  *engine.Service
	Handler  http.Handler
	Server   *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Environment == config.EnvProduction {
		if err := cfg.LoadSecretsFromEnv(ctx); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg, os.Stdout, os.Stderr)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

// provideMetrics returns nil when metrics are disabled; every consumer
// treats a nil manager as "record nothing".
func provideMetrics(cfg *config.Config) *metrics.Manager {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New(metrics.WithSystemCollectors(cfg.Metrics.CollectSystem))
}

func provideStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (engine.Storage, error) {
	return setupStorage(ctx, cfg, logger)
}

func provideWebhooks(cfg *config.Config, logger *slog.Logger) *webhook.Sink {
	return webhook.New(cfg.Webhooks.Endpoints,
		webhook.WithClient(&http.Client{Timeout: cfg.Webhooks.Timeout}),
		webhook.WithLogger(logger),
	)
}

func provideActivity() *analytics.Activity {
	return analytics.NewActivity()
}

func provideCatalog(cfg *config.Config) *printful.Client {
	return printful.New(cfg.Catalog)
}

func provideService(hub *realtime.Hub, storage engine.Storage, sink *webhook.Sink, m *metrics.Manager, activity *analytics.Activity) *engine.Service {
	return arcade.New(
		arcade.WithRealtime(hub),
		arcade.WithActivity(activity),
		arcade.WithStorage(storage),
		arcade.WithWebhooks(sink),
		arcade.WithMetrics(m),
		arcade.WithDispatchMode(engine.DispatchAsync),
	)
}

func provideHandler(svc *engine.Service, hub *realtime.Hub, cfg *config.Config, logger *slog.Logger, m *metrics.Manager, catalog *printful.Client, activity *analytics.Activity) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:      cfg.Server.PathPrefix,
		AllowCORSOrigin: cfg.Server.CORSOrigin,
		MaxLimit:        cfg.Server.MaxLimit,
		MaxBodyBytes:    cfg.Server.MaxBodyBytes,
		Logger:          logger,
		Metrics:         m,
		Catalog:         catalog,
		Activity:        activity,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config, stdout, stderr io.Writer) *slog.Logger {
	var handler slog.Handler

	out := stdout
	if cfg.Logging.Output == "stderr" {
		out = stderr
	}

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func convertAttributes(attrs map[string]string) []slog.Attr {
	result := make([]slog.Attr, 0, len(attrs))
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the storage adapter selected by configuration. With
// the "auto" adapter a configured DSN selects SQL and anything else falls
// back to memory.
func setupStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (engine.Storage, error) {
	adapter := cfg.Storage.ResolvedAdapter()
	switch adapter {
	case config.AdapterMemory:
		if cfg.Environment == config.EnvProduction {
			logger.Warn("using in-memory storage; data is lost on restart")
		}
		return mem.New(), nil
	case config.AdapterRedis:
		return redisAdapter.New(cfg.Storage.Redis)
	case config.AdapterSQL:
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("database schema ready", "driver", store.Driver())
		}
		return store, nil
	case config.AdapterFile:
		return jsonfile.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", adapter)
	}
}
