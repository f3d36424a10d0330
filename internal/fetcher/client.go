// Package fetcher is the HTTP layer every crawl and scan component builds on:
// single GETs, HEAD reachability probes and robots.txt policies.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	statusSuccessLow  = 200
	statusSuccessHigh = 300
	statusBroken      = 400
)

// Response is a fetched document.
type Response struct {
	URL        string
	StatusCode int
	Body       string
}

// OK reports whether the response status is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= statusSuccessLow && r.StatusCode < statusSuccessHigh
}

// Client performs single requests with no retries. Each call is bounded by
// its own timeout.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient creates a Client. A nil httpClient uses a fresh http.Client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg.WithDefaults(),
	}
}

// Fetch performs a GET and returns the response whatever its status.
// Only transport failures are errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL comes from the crawl target
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{URL: rawURL, StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// Get returns the body of any reachable response.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

// GetHTML returns the body keyed by its URL.
func (c *Client) GetHTML(ctx context.Context, rawURL string) (map[string]string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return map[string]string{rawURL: body}, nil
}

// Probe issues a HEAD request and returns a *FetchError when the URL is
// unreachable or answers with a status of 400 or above.
func (c *Client) Probe(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, http.NoBody)
	if err != nil {
		return &FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL comes from scanned HTML
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= statusBroken {
		return &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return nil
}

// RequestTimeout returns the per-request bound.
func (c *Client) RequestTimeout() time.Duration {
	return c.cfg.RequestTimeout
}
