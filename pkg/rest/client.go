// Package rest wraps the Vetra Connect vehicle API with typed request and
// response helpers. Every call carries a bearer token drawn from a
// TokenSource, so token refresh stays the authorization layer's problem.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vetraconnect/vetra/pkg/slogx"
)

// DefaultBaseURL is the production API gateway.
const DefaultBaseURL = "https://api.connect.vetra.eu"

// requestTimeout bounds a single API call end to end. Command endpoints can
// stall while the backend forwards the request to the vehicle.
const requestTimeout = 5 * time.Minute

// TokenSource supplies a valid bearer token for every request. The
// authorization state machine implements it.
type TokenSource interface {
	GetAccessToken(ctx context.Context) (string, error)
}

// Config carries the optional knobs for a Client. The zero value selects
// the production API with no client-side rate limit.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Log        *slog.Logger
}

// Client issues authenticated calls against the vehicle API.
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	log     *slog.Logger
}

// New builds a Client that draws bearer tokens from the given source.
func New(tokens TokenSource, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: requestTimeout}
	}
	if cfg.Log == nil {
		cfg.Log = slogx.Discard()
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/api",
		client:  cfg.HTTPClient,
		tokens:  tokens,
		limiter: cfg.Limiter,
		log:     cfg.Log,
	}
}

// do sends one authenticated request and returns the raw response body.
// Non-2xx answers become a StatusError carrying that body.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	token, err := c.tokens.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("request failed", "method", method, "url", url, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url, Body: raw}
	}

	return raw, nil
}

// getJSON fetches path and decodes the response into target.
func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.decode(path, raw, target)
}

// postJSON posts payload to path and decodes the response into target.
func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	raw, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	return c.decode(path, raw, target)
}

func (c *Client) decode(path string, raw []byte, target any) error {
	if err := json.Unmarshal(raw, target); err != nil {
		return &InvalidResponseError{URL: c.baseURL + path, Body: raw, Err: err}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	_, err := c.do(ctx, http.MethodPost, path, payload)
	return err
}

func (c *Client) put(ctx context.Context, path string, payload any) error {
	_, err := c.do(ctx, http.MethodPut, path, payload)
	return err
}

// GetRaw fetches path and returns the body untouched. Fixture capture uses
// it to store API responses verbatim.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}
