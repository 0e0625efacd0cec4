// Package sync moves locally captured state to the backend and pulls the
// reference catalog down: the device half of the reconciliation protocol.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
	"github.com/rbustosc/fieldsync/internal/syncapi"
	"github.com/sethvargo/go-retry"
)

// Client talks JSON over HTTP to the sync backend. Push and PullCatalog
// retry transient transport failures with fibonacci backoff; thanks to the
// idempotency tokens a replayed push is harmless.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	maxRetries uint64
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: 3,
	}
}

// Login authenticates the device and stores the session token for
// subsequent calls.
func (c *Client) Login(ctx context.Context, deviceCode, secret string) error {
	var resp syncapi.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/devices/login",
		syncapi.LoginRequest{DeviceCode: deviceCode, Secret: secret}, &resp)
	if err != nil {
		return err
	}
	c.token = resp.AccessToken
	return nil
}

// Ping probes server reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/ping", nil, nil)
}

// PullCatalog fetches the company's reference data snapshot.
func (c *Client) PullCatalog(ctx context.Context) (*syncapi.Catalog, error) {
	var catalog syncapi.Catalog
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/api/v1/catalog", nil, &catalog)
	})
	if err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Push submits a batch of operations and returns the per-operation results.
func (c *Client) Push(ctx context.Context, req syncapi.PushRequest) (*syncapi.PushResponse, error) {
	var resp syncapi.PushResponse
	err := c.withRetry(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/api/v1/sync", req, &resp)
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(500*time.Millisecond))
	return retry.Do(ctx, backoff, fn)
}

// do performs one request. Server-side (5xx) and transport failures are
// marked retryable; auth and client errors are not.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.RetryableError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return common.ErrUnauthorized
	case resp.StatusCode >= 500:
		return retry.RetryableError(fmt.Errorf("server error: %s", resp.Status))
	case resp.StatusCode >= 400:
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request rejected: %s: %s", resp.Status, string(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
