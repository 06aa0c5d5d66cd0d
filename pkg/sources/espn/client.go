// Package espn reads fixtures, competitor stats and bookmaker lines from
// the ESPN site API scoreboard.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/moisenya/pronoai/pkg/sources"
)

const (
	// DefaultBaseURL is the ESPN site API base URL
	DefaultBaseURL = "https://site.api.espn.com"

	defaultRateLimit = 5.0 // requests per second
	defaultBurst     = 5
	defaultTimeout   = 5 * time.Second
)

// Client is an ESPN scoreboard client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout bounds each scoreboard call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a new ESPN client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name implements sources.Source.
func (c *Client) Name() string { return "espn" }

// Role implements sources.Source.
func (c *Client) Role() sources.Role { return sources.RolePrimary }

// FetchFixtures returns the not-yet-started fixtures of one league on one date.
func (c *Client) FetchFixtures(ctx context.Context, req sources.Request) (sources.Batch, error) {
	if req.League.Key == "" {
		return sources.Batch{}, fmt.Errorf("espn: missing league key")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("dates", req.Date.Format("20060102"))

	var board scoreboard
	if err := c.get(ctx, "/apis/site/v2/sports/"+req.League.Key+"/scoreboard", params, &board); err != nil {
		return sources.Batch{}, fmt.Errorf("espn %s: %w", req.League.Key, err)
	}

	return sources.Batch{Fixtures: normalizeScoreboard(&board, req.League)}, nil
}

// get performs a GET request with rate limiting.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
