package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	wsadapter "arcadeboard/adapters/websocket"
	"arcadeboard/analytics"
	"arcadeboard/core"
	"arcadeboard/engine"
	"arcadeboard/integrations/printful"
	"arcadeboard/metrics"
	"arcadeboard/realtime"
)

const defaultMaxBodyBytes = 1 << 20

// Options configures the HTTP API surface.
type Options struct {
	// PathPrefix, if set, is prepended to all routes (e.g., "/api").
	PathPrefix string
	// AllowCORSOrigin, if non-empty, enables basic CORS with the given origin (use "*" for any).
	AllowCORSOrigin string
	// MaxLimit caps the leaderboard limit parameter. Zero means no cap.
	MaxLimit int
	// MaxBodyBytes bounds request bodies. Zero means 1 MiB.
	MaxBodyBytes int64
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics, if set, records per-route request metrics and submission counters.
	Metrics *metrics.Manager
	// Catalog backs the Printful proxy routes. Nil answers them as unconfigured.
	Catalog *printful.Client
	// Activity, if set, is served on {prefix}/stats/activity.
	Activity *analytics.Activity
}

type api struct {
	svc  *engine.Service
	opts Options
	log  *slog.Logger
}

// NewMux builds an http.Handler exposing the leaderboard REST API and WebSocket stream.
// Routes:
//   - POST {prefix}/guesses                      (alias /tiktok-guesses)
//   - GET  {prefix}/guesses                      (alias /tiktok-guesses)
//   - GET  {prefix}/guesses/stats
//   - POST {prefix}/scores                       (alias /puzzle-scores)
//   - GET  {prefix}/scores/{gameType}?limit=N    (alias /puzzle-scores/{gameType})
//   - GET  {prefix}/stats/activity?day=YYYY-MM-DD
//   - GET  {prefix}/printful/store-products
//   - GET  {prefix}/printful/products
//   - GET  {prefix}/healthz
//   - WS   {prefix}/ws
func NewMux(svc *engine.Service, hub *realtime.Hub, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	a := &api{svc: svc, opts: opts, log: opts.Logger}
	mux := http.NewServeMux()

	route := func(method, path string, h http.HandlerFunc) {
		full := withPrefix(opts.PathPrefix, path)
		mux.Handle(method+" "+full, instrument(full, opts.Metrics, h))
	}

	for _, base := range []string{"/guesses", "/tiktok-guesses"} {
		route(http.MethodPost, base, a.submitGuess)
		route(http.MethodGet, base, a.listGuesses)
	}
	route(http.MethodGet, "/guesses/stats", a.guessStats)

	for _, base := range []string{"/scores", "/puzzle-scores"} {
		route(http.MethodPost, base, a.submitScore)
		route(http.MethodGet, base+"/{gameType}", a.topScores)
	}

	if opts.Activity != nil {
		route(http.MethodGet, "/stats/activity", a.activity)
	}

	route(http.MethodGet, "/printful/store-products", a.catalog(catalogStore))
	route(http.MethodGet, "/printful/products", a.catalog(catalogProducts))

	route(http.MethodGet, "/healthz", a.health)

	// WebSocket events
	if hub != nil {
		mux.Handle("GET "+withPrefix(opts.PathPrefix, "/ws"), wsadapter.Handler(hub))
	}

	var handler http.Handler = mux
	if opts.AllowCORSOrigin != "" {
		handler = withCORS(handler, opts.AllowCORSOrigin)
	}
	return handler
}

func (a *api) submitGuess(w http.ResponseWriter, r *http.Request) {
	var in core.GuessInput
	if err := decodeBody(w, r, a.opts.MaxBodyBytes, &in); err != nil {
		a.rejected(w, metrics.KindGuess, "Invalid guess data", err)
		return
	}
	ng, err := in.Validate()
	var g core.Guess
	if err == nil {
		g, err = a.svc.SubmitGuess(r.Context(), ng)
	}
	switch {
	case err == nil:
	case errors.Is(err, core.ErrValidation):
		a.rejected(w, metrics.KindGuess, "Invalid guess data", err)
		return
	default:
		a.failed(w, "create guess", "Failed to save guess", err)
		return
	}
	if a.opts.Metrics != nil {
		a.opts.Metrics.RecordSubmission(metrics.KindGuess, "")
	}
	writeJSONStatus(w, http.StatusCreated, g)
}

func (a *api) listGuesses(w http.ResponseWriter, r *http.Request) {
	guesses, err := a.svc.ListGuesses(r.Context())
	if err != nil {
		a.failed(w, "list guesses", "Failed to fetch guesses", err)
		return
	}
	writeJSON(w, guesses)
}

func (a *api) guessStats(w http.ResponseWriter, r *http.Request) {
	guesses, err := a.svc.ListGuesses(r.Context())
	if err != nil {
		a.failed(w, "guess stats", "Failed to fetch guesses", err)
		return
	}
	writeJSON(w, analytics.SummarizeGuesses(guesses))
}

func (a *api) submitScore(w http.ResponseWriter, r *http.Request) {
	var in core.ScoreInput
	if err := decodeBody(w, r, a.opts.MaxBodyBytes, &in); err != nil {
		a.rejected(w, metrics.KindScore, "Invalid score data", err)
		return
	}
	ns, err := in.Validate()
	var sc core.Score
	if err == nil {
		sc, err = a.svc.SubmitScore(r.Context(), ns)
	}
	switch {
	case err == nil:
	case errors.Is(err, core.ErrValidation):
		a.rejected(w, metrics.KindScore, "Invalid score data", err)
		return
	default:
		a.failed(w, "create score", "Failed to save score", err)
		return
	}
	if a.opts.Metrics != nil {
		a.opts.Metrics.RecordSubmission(metrics.KindScore, sc.GameType)
	}
	writeJSONStatus(w, http.StatusCreated, sc)
}

func (a *api) topScores(w http.ResponseWriter, r *http.Request) {
	game := core.GameType(r.PathValue("gameType"))
	limit := core.ParseLimit(r.URL.Query().Get("limit"), a.opts.MaxLimit)
	scores, err := a.svc.TopScores(r.Context(), game, limit)
	if err != nil {
		a.failed(w, "top scores", "Failed to fetch scores", err)
		return
	}
	writeJSON(w, scores)
}

func (a *api) activity(w http.ResponseWriter, r *http.Request) {
	day, err := analytics.ParseDay(r.URL.Query().Get("day"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "Invalid day", err.Error())
		return
	}
	writeJSON(w, a.opts.Activity.Snapshot(day))
}

type catalogKind int

const (
	catalogStore catalogKind = iota
	catalogProducts
)

func (a *api) catalog(kind catalogKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := a.opts.Catalog
		if c == nil || !c.Configured() {
			writeError(w, http.StatusInternalServerError, "catalog_unconfigured", "Printful API token not configured", nil)
			return
		}
		var (
			res json.RawMessage
			err error
			msg string
		)
		switch kind {
		case catalogStore:
			res, err = c.StoreProducts(r.Context())
			msg = "Failed to fetch products from Printful"
		default:
			res, err = c.CatalogProducts(r.Context())
			msg = "Failed to fetch catalog from Printful"
		}
		if err != nil {
			a.log.Error("catalog request failed", "error", err)
			writeError(w, http.StatusInternalServerError, "catalog_error", msg, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(res)
	}
}

// health verifies the storage backend answers.
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "healthy",
		"checks": map[string]any{
			"storage": "ok",
		},
	}
	code := http.StatusOK
	if err := a.svc.Ping(r.Context()); err != nil {
		a.log.Warn("health check failed", "error", err)
		code = http.StatusServiceUnavailable
		status["status"] = "unhealthy"
		status["checks"].(map[string]any)["storage"] = "failed"
	}
	writeJSONStatus(w, code, status)
}

// rejected answers a client error. Bad input is expected traffic, so it is
// only logged at debug level.
func (a *api) rejected(w http.ResponseWriter, kind, msg string, err error) {
	a.log.Debug("submission rejected", "kind", kind, "error", err)
	if a.opts.Metrics != nil {
		a.opts.Metrics.RecordRejection(kind)
	}
	var details any
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		details = map[string]string{"field": ve.Field, "reason": ve.Reason}
	}
	writeError(w, http.StatusBadRequest, "invalid_input", msg, details)
}

func (a *api) failed(w http.ResponseWriter, op, msg string, err error) {
	a.log.Error("storage operation failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "storage_unavailable", msg, nil)
}

// Helpers

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func withPrefix(prefix, path string) string {
	if prefix == "" || prefix == "/" {
		return path
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix[:len(prefix)-1] + path
	}
	return prefix + path
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string, details any) {
	writeJSONStatus(w, status, apiError{Code: code, Message: msg, Details: details})
}
