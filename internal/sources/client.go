// Package sources holds the transport shared by the news, movie and social
// adapters and the error type they report upstream failures with.
//
// Adapters never fall back to cached or mock data themselves. A failed call
// surfaces as *UpstreamError and the aggregation layer decides what to do.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// userAgent identifies adapter requests to the content-source proxy.
const userAgent = "Dashboard/1.0 (+https://github.com/abelbrown/dashboard)"

// UpstreamError reports a failed or non-2xx transport call.
type UpstreamError struct {
	Source string // "news", "movie", "social"
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream: HTTP %d", e.Source, e.Status)
	}
	return fmt.Sprintf("%s upstream: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err is (or wraps) an *UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Client performs rate-limited JSON GETs against one upstream.
type Client struct {
	source  string
	baseURL string
	header  http.Header
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Client for the named source. rps <= 0 disables
// rate limiting.
func NewClient(source, baseURL string, timeout time.Duration, rps float64) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		source:  source,
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  http.Header{},
		http:    &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

// SetHeader adds a header sent with every request, e.g. an API key.
// Not safe to call concurrently with GetJSON.
func (c *Client) SetHeader(key, value string) *Client {
	c.header.Set(key, value)
	return c
}

// GetJSON issues GET baseURL+path?params and decodes the body into out.
// Every failure is returned as *UpstreamError.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &UpstreamError{Source: c.source, Err: err}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamError{Source: c.source, Err: fmt.Errorf("create request: %w", err)}
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// *url.Error repeats the full URL, which may carry an API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = fmt.Errorf("%s %s: %w", uerr.Op, c.baseURL+path, uerr.Err)
		}
		return &UpstreamError{Source: c.source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			Source: c.source,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{Source: c.source, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// BlankQuery reports whether q is empty after trimming whitespace. Search
// calls short-circuit on blank queries without touching the network.
func BlankQuery(q string) bool {
	return strings.TrimSpace(q) == ""
}
