// Package sofascore lists scheduled events per sport and date. It is used
// only to confirm fixtures found on the primary source.
package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/sources"
)

const (
	// DefaultBaseURL is the SofaScore API base URL
	DefaultBaseURL = "https://api.sofascore.com"

	defaultRateLimit = 2.0 // requests per second
	defaultBurst     = 3
	defaultTimeout   = 5 * time.Second

	// Timestamps above this are in milliseconds.
	millisThreshold = 1_000_000_000_000
)

// categories maps a sport to its SofaScore path segment.
var categories = map[fixtures.Sport]string{
	fixtures.Football: "football",
	fixtures.Tennis:   "tennis",
	fixtures.Basket:   "basketball",
}

// Client is a SofaScore scheduled-events client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	userAgent  string
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

// WithTimeout bounds each call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a new SofaScore client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		timeout:   defaultTimeout,
		userAgent: "Mozilla/5.0 (compatible; pronoai/1.0)",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name implements sources.Source.
func (c *Client) Name() string { return "sofascore" }

// Role implements sources.Source.
func (c *Client) Role() sources.Role { return sources.RoleSecondary }

type scheduledEvents struct {
	Events []struct {
		ID         int64 `json:"id"`
		Tournament struct {
			Name string `json:"name"`
		} `json:"tournament"`
		Status struct {
			Type string `json:"type"` // notstarted, inprogress, finished
		} `json:"status"`
		HomeTeam struct {
			Name string `json:"name"`
		} `json:"homeTeam"`
		AwayTeam struct {
			Name string `json:"name"`
		} `json:"awayTeam"`
		StartTimestamp int64 `json:"startTimestamp"`
	} `json:"events"`
}

// FetchFixtures lists the scheduled events of a sport on one date.
func (c *Client) FetchFixtures(ctx context.Context, req sources.Request) (sources.Batch, error) {
	category, ok := categories[req.Sport]
	if !ok {
		return sources.Batch{}, fmt.Errorf("sofascore: unsupported sport %q", req.Sport)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload scheduledEvents
	path := fmt.Sprintf("/api/v1/sport/%s/scheduled-events/%s", category, req.Date.Format("2006-01-02"))
	if err := c.get(ctx, path, &payload); err != nil {
		return sources.Batch{}, fmt.Errorf("sofascore %s: %w", category, err)
	}

	var out []fixtures.SecondaryFixture
	for _, ev := range payload.Events {
		if ev.Status.Type != "" && ev.Status.Type != "notstarted" {
			continue
		}
		home, away := strings.TrimSpace(ev.HomeTeam.Name), strings.TrimSpace(ev.AwayTeam.Name)
		if home == "" || away == "" || ev.StartTimestamp <= 0 {
			continue
		}
		out = append(out, fixtures.SecondaryFixture{
			Sport:    req.Sport,
			League:   ev.Tournament.Name,
			HomeName: home,
			AwayName: away,
			Start:    startTime(ev.StartTimestamp),
		})
	}
	return sources.Batch{Secondary: out}, nil
}

// startTime accepts unix seconds or milliseconds.
func startTime(ts int64) time.Time {
	if ts >= millisThreshold {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

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
