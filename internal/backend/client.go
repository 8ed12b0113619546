// Package backend is the HTTP client for the external backend collaborator.
// The gateway holds no authoritative state of its own; every durable concern
// (users, trainer links, forms, submissions, nutrition data) lives behind
// this client.
package backend

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

	"go.uber.org/zap"
)

var (
	// ErrUnavailable means the backend could not be reached at all.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrTimeout means the call exceeded the configured backend timeout.
	ErrTimeout = errors.New("backend request timed out")
)

// Response is the raw upstream result. Handlers relay Status and Body to the
// client rather than re-interpreting them, except where a route reshapes the
// payload.
type Response struct {
	Status int
	Body   []byte
}

func (r Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// JSON decodes the body tolerantly: empty or malformed bodies yield an empty
// object, matching how the original routes read upstream responses.
func (r Response) JSON() map[string]any {
	out := map[string]any{}
	if len(r.Body) == 0 {
		return out
	}
	_ = json.Unmarshal(r.Body, &out)
	return out
}

// Decode unmarshals the body into a typed value.
func (r Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
	lg      *zap.SugaredLogger
}

func New(base string, timeout time.Duration, lg *zap.SugaredLogger) *Client {
	return &Client{
		base:    strings.TrimRight(base, "/"),
		http:    &http.Client{},
		timeout: timeout,
		lg:      lg,
	}
}

// Do performs one JSON request against the backend. Every call carries the
// same timeout policy; cancellation of the inbound request context cancels
// the upstream call as well.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return Response{}, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return Response{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.lg.Warnw("backend call timed out", "method", method, "path", path, "timeout", c.timeout)
			return Response{}, ErrTimeout
		}
		c.lg.Warnw("backend call failed", "method", method, "path", path, "error", err)
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Response{Status: resp.StatusCode, Body: buf}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) (Response, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (Response, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}
