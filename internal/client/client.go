// Package client talks to the HTTP server driving the LED matrix.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pleimann/matrixpush/internal/geometry"
)

// ErrTransport wraps every failure to reach the display or read its reply
var ErrTransport = errors.New("transport failure")

// Client sends requests to one display server
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger used for warnings
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the server at baseURL, e.g. "http://matrix.local"
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:   u,
		http:   &http.Client{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server address
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(name string) string {
	return c.base.JoinPath(name).String()
}

// Size asks the display for its geometry
func (c *Client) Size(ctx context.Context) (geometry.Display, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(EndpointSize), nil)
	if err != nil {
		return geometry.Display{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return geometry.Display{}, fmt.Errorf("%w: GET /%s: %v", ErrTransport, EndpointSize, err)
	}
	defer resp.Body.Close()

	var body sizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return geometry.Display{}, fmt.Errorf("%w: GET /%s: invalid response: %v", ErrTransport, EndpointSize, err)
	}

	d := geometry.Display{Width: body.Size[0], Height: body.Size[1]}
	if !d.Valid() {
		return geometry.Display{}, fmt.Errorf("%w: GET /%s: invalid size %v", ErrTransport, EndpointSize, d)
	}
	return d, nil
}

// Geometry fetches the display size once, substituting fallback when the
// server cannot be asked. The returned error, if any, is the reason for the
// fallback and is meant as a warning to the user. There is no retry.
func (c *Client) Geometry(ctx context.Context, fallback geometry.Display) (geometry.Display, error) {
	d, err := c.Size(ctx)
	if err != nil {
		c.logger.Warn("Display size unavailable, using fallback", "fallback", fallback.String(), "error", err)
		return fallback, err
	}
	c.logger.Debug("Display size", "size", d.String())
	return d, nil
}

// Submit posts a payload and returns the server's reply as an opaque status
// text. Non-2xx replies are returned like any other and only logged.
func (c *Client) Submit(ctx context.Context, p Payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", p.Endpoint(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(p.Endpoint()), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if p.Endpoint() == EndpointText {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	} else {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Submitting", "endpoint", p.Endpoint(), "bytes", len(body))

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: POST /%s: %v", ErrTransport, p.Endpoint(), err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: POST /%s: reading reply: %v", ErrTransport, p.Endpoint(), err)
	}

	if resp.StatusCode/100 != 2 {
		c.logger.Warn("Display rejected submission", "endpoint", p.Endpoint(), "status", resp.StatusCode)
	}

	return string(reply), nil
}
