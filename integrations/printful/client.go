// Package printful is a minimal client for the Printful merch catalog API.
package printful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public Printful API root.
const DefaultBaseURL = "https://api.printful.com"

// ErrNoToken is returned when the client has no API token configured.
var ErrNoToken = errors.New("printful: api token not configured")

// Config holds catalog proxy configuration.
type Config struct {
	Token   string        `json:"token" env:"ARCADEBOARD_CATALOG_TOKEN,PRINTFUL_API_TOKEN"`
	BaseURL string        `json:"base_url" env:"ARCADEBOARD_CATALOG_BASE_URL"`
	Timeout time.Duration `json:"timeout" env:"ARCADEBOARD_CATALOG_TIMEOUT"`
}

// DefaultConfig returns a config pointing at the public API without a token.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL, Timeout: 10 * time.Second}
}

// Client fetches product listings. Results are passed through untouched.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// New creates a Client. An empty token is allowed; calls then fail with ErrNoToken.
func New(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: base,
		token:   cfg.Token,
	}
}

// Configured reports whether an API token is set.
func (c *Client) Configured() bool { return c.token != "" }

// StoreProducts lists the products synced to the store.
func (c *Client) StoreProducts(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/store/products")
}

// CatalogProducts lists Printful's base product catalog.
func (c *Client) CatalogProducts(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "/products")
}

type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// get returns the envelope's result, or an empty JSON array when it is absent.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	if !c.Configured() {
		return nil, ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("printful %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("printful %s: read body: %w", path, err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("printful %s: status %d: decode: %w", path, resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return nil, fmt.Errorf("printful %s: status %d: %s", path, resp.StatusCode, msg)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return json.RawMessage("[]"), nil
	}
	return env.Result, nil
}
