// Package client is a typed HTTP client for the studio API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIURL = "http://localhost:8081/api/v1"

type Client struct {
	http *http.Client
}

type Option func(*http.Client)

// WithTimeout bounds each request. Review and import calls wait on the AI
// service, so keep this generous.
func WithTimeout(d time.Duration) Option {
	return func(c *http.Client) { c.Timeout = d }
}

// WithTransport replaces the base round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *http.Client) { c.Transport = rt }
}

// New returns a client whose requests are rewritten onto apiURL, including
// any base path such as /api/v1.
func New(apiURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API URL %q must include scheme and host", apiURL)
	}

	hc := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
		},
	}
	for _, opt := range opts {
		opt(hc)
	}
	hc.Transport = &baseURLTransport{base: hc.Transport, apiURL: u}

	return &Client{http: hc}, nil
}

// baseURLTransport points relative requests at the configured API.
type baseURLTransport struct {
	base   http.RoundTripper
	apiURL *url.URL
}

func (t *baseURLTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	req.URL.Scheme = t.apiURL.Scheme
	req.URL.Host = t.apiURL.Host
	req.Host = t.apiURL.Host

	if p := strings.TrimSuffix(t.apiURL.Path, "/"); p != "" {
		req.URL.Path = p + req.URL.Path
	}

	return t.base.RoundTrip(req)
}

// doJSON sends body as JSON (when non-nil) and decodes a 2xx answer into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := c.newRequest(ctx, method, path, query, r)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(op, req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := &url.URL{Path: path}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(op string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	slog.Debug("api call", "op", op, "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
