// Package arcade assembles a ready-to-use leaderboard service.
package arcade

import (
	mem "arcadeboard/adapters/memory"
	"arcadeboard/analytics"
	"arcadeboard/engine"
	"arcadeboard/integrations/webhook"
	"arcadeboard/metrics"
	"arcadeboard/realtime"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	storage  engine.Storage
	mode     engine.DispatchMode
	hub      *realtime.Hub
	webhooks *webhook.Sink
	metrics  *metrics.Manager
	activity *analytics.Activity
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all submission events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithWebhooks forwards all submission events to sink.
func WithWebhooks(sink *webhook.Sink) Option { return func(c *config) { c.webhooks = sink } }

// WithMetrics times every storage call on m.
func WithMetrics(m *metrics.Manager) Option { return func(c *config) { c.metrics = m } }

// WithActivity feeds every submission event into a.
func WithActivity(a *analytics.Activity) Option { return func(c *config) { c.activity = a } }

// New builds a configured Service. If not provided, defaults are used:
//   - storage: in-memory
//   - dispatch: async
func New(opts ...Option) *engine.Service {
	cfg := &config{mode: engine.DispatchAsync}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = mem.New()
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewService(metrics.InstrumentStorage(cfg.storage, cfg.metrics), bus)
	if cfg.hub != nil {
		bus.Subscribe(engine.AllEvents, cfg.hub.Broadcast)
	}
	if cfg.webhooks != nil && len(cfg.webhooks.Endpoints()) > 0 {
		bus.Subscribe(engine.AllEvents, cfg.webhooks.OnEvent)
	}
	if cfg.activity != nil {
		bus.Subscribe(engine.AllEvents, cfg.activity.OnEvent)
	}
	return svc
}
