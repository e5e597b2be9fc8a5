package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"arcadeboard/analytics"
	"arcadeboard/core"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the leaderboard HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// SubmitGuess records a live-event guess and returns the stored record.
func (c *Client) SubmitGuess(ctx context.Context, playerName string, guessedNumber int64) (core.Guess, error) {
	if strings.TrimSpace(playerName) == "" {
		return core.Guess{}, ErrEmptyPlayerName
	}
	body := map[string]any{"playerName": playerName, "guessedNumber": guessedNumber}
	var g core.Guess
	if err := c.do(ctx, http.MethodPost, "/guesses", body, &g); err != nil {
		return core.Guess{}, err
	}
	return g, nil
}

// ListGuesses returns every guess, newest first.
func (c *Client) ListGuesses(ctx context.Context) ([]core.Guess, error) {
	var out []core.Guess
	if err := c.do(ctx, http.MethodGet, "/guesses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GuessStats fetches the aggregate view over all guesses.
func (c *Client) GuessStats(ctx context.Context) (analytics.GuessSummary, error) {
	var out analytics.GuessSummary
	if err := c.do(ctx, http.MethodGet, "/guesses/stats", nil, &out); err != nil {
		return analytics.GuessSummary{}, err
	}
	return out, nil
}

// SubmitScore records a completed game and returns the stored record.
func (c *Client) SubmitScore(ctx context.Context, playerName string, timeSeconds int64, game core.GameType) (core.Score, error) {
	if strings.TrimSpace(playerName) == "" {
		return core.Score{}, ErrEmptyPlayerName
	}
	body := map[string]any{"playerName": playerName, "timeSeconds": timeSeconds, "gameType": game}
	var sc core.Score
	if err := c.do(ctx, http.MethodPost, "/scores", body, &sc); err != nil {
		return core.Score{}, err
	}
	return sc, nil
}

// TopScores returns the fastest scores for game. A limit of zero or less
// leaves the choice to the server.
func (c *Client) TopScores(ctx context.Context, game core.GameType, limit int) ([]core.Score, error) {
	path := "/scores/" + url.PathEscape(string(game))
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []core.Score
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Activity fetches per-day submission counters. A zero day asks for today.
func (c *Client) Activity(ctx context.Context, day time.Time) (analytics.ActivitySnapshot, error) {
	path := "/stats/activity"
	if !day.IsZero() {
		path += "?day=" + day.UTC().Format(analytics.DayLayout)
	}
	var out analytics.ActivitySnapshot
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return analytics.ActivitySnapshot{}, err
	}
	return out, nil
}

// StoreProducts returns the merch store's product list as proxied from Printful.
func (c *Client) StoreProducts(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/printful/store-products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CatalogProducts returns the Printful catalog as proxied by the server.
func (c *Client) CatalogProducts(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/printful/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health probes /healthz and returns status + storage check. An unhealthy
// server answers 503 with the same body, which is returned without error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	resp, err := c.send(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()

	var hs HealthStatus
	if resp.StatusCode == http.StatusServiceUnavailable {
		err = json.NewDecoder(resp.Body).Decode(&hs)
	} else {
		err = decodeJSON(resp, &hs)
	}
	if err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits core.Event values.
// A non-empty game limits the stream to score events of that game type.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context, game core.GameType) (<-chan core.Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	target := c.wsURL
	if game != "" {
		target += "?game=" + url.QueryEscape(string(game))
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, target, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event, 32)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(done)
		defer close(out)
		for {
			var evt core.Event
			if err := conn.ReadJSON(&evt); err != nil {
				return
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			default:
				// drop if consumer is slow
			}
		}
	}()
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, out)
}

func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.applyHeaders(req)
	return c.httpClient.Do(req)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
