// Package apiclient is the single HTTP client every store talks through.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/pkg/logger"
)

// Config configures the client. A zero Timeout leaves the transport defaults.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client sends requests to the directory API under a fixed base URL.
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *logger.Logger
}

// Response is a completed 2xx exchange.
type Response struct {
	Status int
	Body   []byte
}

// StatusError is a non-2xx answer. Error and Message hold the fields of the
// API failure body when it had them.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	ErrText string
	Message string
	Body    []byte
}

func (e *StatusError) Error() string {
	if t := e.Text(""); t != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, t)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.Status)
}

// Text returns the server-provided message, preferring the named body field
// ("error" or "message"). Empty when the body carried neither.
func (e *StatusError) Text(prefer string) string {
	if prefer == "message" && e.Message != "" {
		return e.Message
	}
	if e.ErrText != "" {
		return e.ErrText
	}
	return e.Message
}

type failureBody struct {
	Error   any    `json:"error"`
	Message string `json:"message"`
}

// New builds a client. BaseURL must be an absolute http(s) URL.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", cfg.BaseURL)
	}
	if log == nil {
		log = logger.Nop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		base:      base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		logger:    log,
	}, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Ping sends HEAD path. Any HTTP answer counts as reachable; only transport
// failures are returned.
func (c *Client) Ping(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodHead, path, nil)
	var se *StatusError
	if errors.As(err, &se) {
		return nil
	}
	return err
}

// Do sends one request. A *normalize.Multipart body is sent as
// multipart/form-data, any other non-nil body as JSON. Transport failures are
// returned wrapped; non-2xx answers come back as *StatusError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	var (
		reader      io.Reader
		contentType string
	)

	switch b := body.(type) {
	case nil:
	case *normalize.Multipart:
		ct, buf, err := b.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode multipart: %w", err)
		}
		reader, contentType = buf, ct
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		reader, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.ZL.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	c.logger.ZL.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, Path: path, Status: resp.StatusCode, Body: raw}
		var fb failureBody
		if json.Unmarshal(raw, &fb) == nil {
			if s, ok := fb.Error.(string); ok {
				se.ErrText = s
			}
			se.Message = fb.Message
		}
		return nil, se
	}

	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func (c *Client) resolve(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.base.String() + path
}
