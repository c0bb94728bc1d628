// Package client talks to a `callout serve` instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/callout/internal/server"
	"github.com/matzehuels/callout/pkg/cache"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/scene"
)

const (
	httpTimeout   = 30 * time.Second
	retryAttempts = 3
	retryDelay    = 200 * time.Millisecond
)

// Client provides typed access to the HTTP API. Requests that fail with a
// network error or a 5xx status are retried with backoff.
type Client struct {
	base    *url.URL
	http    *http.Client
	headers map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse server URL")
	}
	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: httpTimeout},
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Place computes a placement on the server.
func (c *Client) Place(ctx context.Context, req server.PlaceRequest) (*server.PlaceResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out server.PlaceResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/place", nil, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Render renders s in one format.
func (c *Client) Render(ctx context.Context, s *scene.Scene, format string, opts pipeline.Options) ([]byte, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/v1/render", renderQuery(format, opts), "application/json", body)
}

// CreateScene stores s and returns its record.
func (c *Client) CreateScene(ctx context.Context, s *scene.Scene) (*server.SceneResponse, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out server.SceneResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scenes", nil, "application/json", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetScene fetches a stored scene.
func (c *Client) GetScene(ctx context.Context, id string) (*server.SceneResponse, error) {
	if err := errors.ValidateID("scene", id); err != nil {
		return nil, err
	}
	var out server.SceneResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/scenes/"+id, nil, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListScenes lists stored scenes, newest first.
func (c *Client) ListScenes(ctx context.Context, limit int) ([]server.SceneResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []server.SceneResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/scenes", q, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteScene removes a stored scene.
func (c *Client) DeleteScene(ctx context.Context, id string) error {
	if err := errors.ValidateID("scene", id); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, "/v1/scenes/"+id, nil, "", nil)
	return err
}

// RenderScene renders a stored scene in one format.
func (c *Client) RenderScene(ctx context.Context, id, format string, opts pipeline.Options) ([]byte, error) {
	if err := errors.ValidateID("scene", id); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodGet, "/v1/scenes/"+id+"/render", renderQuery(format, opts), "", nil)
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil, "", nil)
	return err
}

func renderQuery(format string, opts pipeline.Options) url.Values {
	q := url.Values{}
	q.Set("format", format)
	if opts.Steps > 0 {
		q.Set("steps", strconv.Itoa(opts.Steps))
	}
	if opts.Measurer != "" {
		q.Set("measurer", opts.Measurer)
	}
	if opts.Scale > 0 {
		q.Set("scale", strconv.FormatFloat(opts.Scale, 'g', -1, 64))
	}
	for name, set := range map[string]bool{
		"live":     opts.Live,
		"graphviz": opts.Graphviz,
		"labels":   opts.Labels,
		"refresh":  opts.Refresh,
	} {
		if set {
			q.Set(name, "true")
		}
	}
	return q
}

func (c *Client) doJSON(ctx context.Context, method, path string, q url.Values, contentType string, body []byte, v any) error {
	data, err := c.do(ctx, method, path, q, contentType, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, contentType string, body []byte) ([]byte, error) {
	u := *c.base
	u.Path += path
	u.RawQuery = q.Encode()

	var out []byte
	err := cache.RetryWithBackoff(ctx, retryAttempts, retryDelay, func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return err
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return cache.Retryable(fmt.Errorf("%s %s: %w", method, path, err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return cache.Retryable(err)
		}
		if err := checkStatus(resp.StatusCode, data); err != nil {
			return err
		}
		out = data
		return nil
	})
	return out, err
}

// checkStatus turns an error response into a coded error carrying the
// server's code and message.
func checkStatus(status int, body []byte) error {
	if status < 300 {
		return nil
	}
	var e struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &e)
	code := errors.Code(e.Code)
	if code == "" {
		code = errors.ErrCodeInternal
		if status == http.StatusNotFound {
			code = errors.ErrCodeNotFound
		}
	}
	msg := e.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	err := errors.New(code, "server returned %d: %s", status, msg)
	if status >= 500 {
		return cache.Retryable(err)
	}
	return err
}
