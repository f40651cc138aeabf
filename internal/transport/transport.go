// Package transport is the HTTP boundary of the dispatcher: one POST for an
// inline message, one PUT for a file upload. The interface exists so tests
// and embedders can substitute the network entirely.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Transport issues one HTTP call per resolved notification request.
type Transport interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string) error
	Put(ctx context.Context, url string, body io.Reader, headers map[string]string) error
}

// HTTP is the production Transport on top of net/http.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP transport. A non-positive timeout selects the
// default of 10 seconds.
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTP{client: &http.Client{Timeout: timeout}}
}

// Post sends the encoded message text.
func (h *HTTP) Post(ctx context.Context, url string, body []byte, headers map[string]string) error {
	return h.do(ctx, http.MethodPost, url, bytes.NewReader(body), headers)
}

// Put streams a file body.
func (h *HTTP) Put(ctx context.Context, url string, body io.Reader, headers map[string]string) error {
	return h.do(ctx, http.MethodPut, url, body, headers)
}

func (h *HTTP) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%s %s: create request: %w", method, url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}
	return nil
}
