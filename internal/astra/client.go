// Package astra is a thin client for the Astra / Stargate REST interface.
package astra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TokenHeader carries the application token on every request.
const TokenHeader = "X-Cassandra-Token"

// Options are the values a handle is built from.
type Options struct {
	DatabaseID string
	Region     string
	Token      string
	Keyspace   string

	// BaseURL, when set, is used instead of the Astra host derived from
	// DatabaseID and Region.
	BaseURL string

	// Timeout bounds each call. Zero means no deadline.
	Timeout time.Duration

	// HTTPClient defaults to a fresh *http.Client.
	HTTPClient *http.Client
}

// Client is an authenticated handle. It is safe for concurrent use.
type Client struct {
	base     *url.URL
	token    string
	keyspace string
	timeout  time.Duration
	http     *http.Client
	log      *zap.Logger
}

// Response mirrors the {status, data} envelope: Data is the response body.
type Response struct {
	Status int
	Data   json.RawMessage
}

// New builds a handle. The only failure is a base URL that does not parse.
func New(opts Options, log *zap.Logger) (*Client, error) {
	raw := opts.BaseURL
	if raw == "" {
		raw = fmt.Sprintf("https://%s-%s.apps.astra.datastax.com", opts.DatabaseID, opts.Region)
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("astra base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("astra base url: %q is not absolute", raw)
	}
	base.Path = strings.TrimRight(base.Path, "/")

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:     base,
		token:    opts.Token,
		keyspace: opts.Keyspace,
		timeout:  opts.Timeout,
		http:     hc,
		log:      log,
	}, nil
}

// Keyspace is the keyspace the handle was built for.
func (c *Client) Keyspace() string { return c.keyspace }

// BaseURL is the scheme and host every path is resolved against.
func (c *Client) BaseURL() string { return c.base.String() }

// Get issues a GET for path and decodes the JSON body into Response.Data.
// Any status >= 400 is returned as an error carrying the body text.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := *c.base
	u.Path = c.base.Path + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	c.log.Debug("astra GET",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode %s: response is not JSON", path)
	}
	return &Response{Status: resp.StatusCode, Data: json.RawMessage(body)}, nil
}

// StatusError is an upstream reply with a failing status code.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}
