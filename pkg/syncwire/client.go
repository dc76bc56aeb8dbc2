package syncwire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryPolicy controls how the client retries transient failures.
// Backoff grows by Factor per attempt and is capped at MaxBackoff.
type RetryPolicy struct {
	InitialBackoff time.Duration
	Factor         float64
	MaxBackoff     time.Duration
	MaxAttempts    int
}

// DefaultRetryPolicy matches the sync contract between the two services:
// 2s initial delay, doubling, capped at 20s, six attempts total.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialBackoff: 2 * time.Second,
		Factor:         2,
		MaxBackoff:     20 * time.Second,
		MaxAttempts:    6,
	}
}

// NoRetry performs a single attempt. Used for best-effort calls where the
// caller absorbs the failure instead of waiting out a retry schedule.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Client is an HTTP client for the internal sync channel between the two
// services. Every request carries the shared secret as a bearer token.
// Transport errors and 5xx responses are retried per the policy; any other
// non-2xx response is terminal.
type Client struct {
	baseURL string
	secret  string
	policy  RetryPolicy
	http    *http.Client
}

// NewClient creates a sync client for the peer at baseURL.
func NewClient(baseURL, secret string, policy RetryPolicy) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		policy:  policy,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SetHTTPClient replaces the underlying HTTP client. Tests use this to
// shorten timeouts.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// PostJSON sends body as JSON to path. Success is any 2xx response.
func (c *Client) PostJSON(path string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal sync payload: %w", err)
	}
	return c.do(func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, nil)
}

// Delete issues a DELETE to path. A 404 is treated as success: the record is
// already gone on the peer.
func (c *Client) Delete(path string) error {
	return c.do(func() (*http.Request, error) {
		return http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	}, func(status int) bool { return status == http.StatusNotFound })
}

// GetJSON fetches path and decodes the response body into out.
func (c *Client) GetJSON(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sync GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync GET %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// do runs the request builder through the retry loop. alsoOK lets a caller
// accept an additional terminal status as success.
func (c *Client) do(build func() (*http.Request, error), alsoOK func(int) bool) error {
	backoff := c.policy.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(backoff)
			backoff = time.Duration(float64(backoff) * c.policy.Factor)
			if c.policy.MaxBackoff > 0 && backoff > c.policy.MaxBackoff {
				backoff = c.policy.MaxBackoff
			}
		}

		req, err := build()
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.secret)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return nil
		case alsoOK != nil && alsoOK(resp.StatusCode):
			return nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("peer returned status %d", resp.StatusCode)
			continue
		default:
			// 4xx other than the allowed set will not improve on retry.
			return fmt.Errorf("peer rejected request with status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("sync request failed after %d attempts: %w", c.policy.MaxAttempts, lastErr)
}
