// Package translate is the HTTP client for the natural-language-to-command
// translation service. The service is a black box: text in, command text or
// no suggestion out. Transport failures and timeouts are surfaced as errors
// and mapped to "no suggestion" by the caller, so a broken backend never
// blocks command execution.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jellydator/ttlcache/v3"
)

// ErrNoEndpoint is returned when the client is constructed without a URL.
var ErrNoEndpoint = errors.New("no translation endpoint configured")

type suggestRequest struct {
	Input string `json:"input"`
}

type suggestResponse struct {
	Command string `json:"command"`
}

type explainRequest struct {
	Command string `json:"command"`
}

type explainResponse struct {
	Explanation string `json:"explanation"`
}

// Client talks to the translation endpoint. Identical Suggest inputs are
// served from a TTL cache so re-submitting the same phrase does not re-hit
// the service.
type Client struct {
	http  *resty.Client
	cache *ttlcache.Cache[string, string]
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call transport timeout. The caller's context
// deadline still applies on top of it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithCacheTTL sets how long suggestions are cached.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) {
		c.cache = ttlcache.New[string, string](ttlcache.WithTTL[string, string](d))
	}
}

// New creates a Client for the given base URL.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(endpoint).
			SetHeader("Content-Type", "application/json"),
		cache: ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](5 * time.Minute),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Suggest submits input for translation. An empty return with nil error
// means the service had no suggestion.
func (c *Client) Suggest(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if item := c.cache.Get(input); item != nil {
		return item.Value(), nil
	}

	var out suggestResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(suggestRequest{Input: input}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/translate")
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("translation service returned %s", resp.Status())
	}

	command := strings.TrimSpace(out.Command)
	c.cache.Set(input, command, ttlcache.DefaultTTL)
	return command, nil
}

// Explain asks the service to describe what command does in plain language.
func (c *Client) Explain(ctx context.Context, command string) (string, error) {
	var out explainResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(explainRequest{Command: command}).
		SetResult(&out).
		ForceContentType("application/json").
		Post("/v1/explain")
	if err != nil {
		return "", fmt.Errorf("explain request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("translation service returned %s", resp.Status())
	}
	return strings.TrimSpace(out.Explanation), nil
}
