// Package upc proxies product lookups to an external UPC database. The
// browser cannot call the upstream directly (CORS), and proxying keeps the
// upstream endpoint out of client code.
package upc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var ErrNoItems = errors.New("no items found for upc")

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("upc lookup base URL is required")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Lookup queries the upstream service for a UPC. The returned RateLimit is
// populated from upstream headers when present. ErrNoItems is returned when
// the upstream reports zero items.
func (c *Client) Lookup(ctx context.Context, code string) (*LookupResponse, *RateLimit, error) {
	reqURL := fmt.Sprintf("%s?upc=%s", c.config.BaseURL, url.QueryEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("upc lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	rateLimit := &RateLimit{
		Limit:     resp.Header.Get("X-RateLimit-Limit"),
		Remaining: resp.Header.Get("X-RateLimit-Remaining"),
		Reset:     resp.Header.Get("X-RateLimit-Reset"),
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, rateLimit, fmt.Errorf("failed to read upc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, rateLimit, fmt.Errorf("upc lookup returned status %d: %s", resp.StatusCode, string(body))
	}

	var lookup LookupResponse
	if err := json.Unmarshal(body, &lookup); err != nil {
		return nil, rateLimit, fmt.Errorf("failed to unmarshal upc response: %w", err)
	}

	if len(lookup.Items) == 0 {
		return nil, rateLimit, ErrNoItems
	}

	return &lookup, rateLimit, nil
}
