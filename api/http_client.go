// api/http_client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
)

// StatusError is returned for non-2xx responses and keeps the body for callers that
// decode error payloads.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return "unexpected status code: " + e.Status
}

// retryable reports whether a retry could produce a different answer.
func (e *StatusError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPClient struct to hold base URL and HTTP client configuration
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Attempts   uint
	Delay      time.Duration
}

// NewHTTPClient creates a new instance of HTTPClient with default settings
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second, // Set a timeout for requests
		},
		Attempts: 3,
		Delay:    200 * time.Millisecond,
	}
}

// Request makes an HTTP request to the API and decodes the response. Transport errors,
// 5xx and 429 responses are retried with jittered backoff; other statuses fail at once
// with a *StatusError.
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}, response interface{}) error {
	var requestBody []byte
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		requestBody = jsonBody
	}

	var resBody []byte
	err := retry.Do(
		func() error {
			var err error
			resBody, err = c.do(ctx, method, c.BaseURL+endpoint, headers, requestBody)
			if se, ok := err.(*StatusError); ok && !se.retryable() {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.Attempts),
		retry.Delay(c.Delay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	if response != nil {
		return json.Unmarshal(resBody, response)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, url string, headers map[string]string, requestBody []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: res.StatusCode, Status: res.Status, Body: resBody}
	}
	return resBody, nil
}
