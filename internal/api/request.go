package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrMalformedResponse marks a response body that could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// APIError is a non-2xx response from the MLB Stats API.
type APIError struct {
	Path       string
	StatusCode int
	Message    string        // From the response body, or the status text
	RetryAfter time.Duration // From the Retry-After header, if any
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mlb stats api %s: %d %s", e.Path, e.StatusCode, e.Message)
}

// IsRetryable reports whether the request may succeed if repeated.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// errorBody is the JSON error document the Stats API returns.
type errorBody struct {
	MessageNumber int    `json:"messageNumber"`
	Message       string `json:"message"`
}

func newAPIError(path string, resp *http.Response, body []byte) *APIError {
	e := &APIError{
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       body,
	}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && eb.Message != "" {
		e.Message = eb.Message
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

// doRequest performs a single request against path.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", path, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(path, resp, body)
	}

	return body, nil
}

// doWithRetry repeats retryable failures with jittered exponential backoff.
// A Retry-After header lengthens the wait but never shortens it.
func (c *Client) doWithRetry(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	backoff := c.retryBackoff
	attempts := max(c.maxRetries, 0) + 1

	var apiErr *APIError
	for attempt := 1; ; attempt++ {
		body, err := c.doRequest(ctx, method, path, query)
		if err == nil {
			return body, nil
		}
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}
		if attempt == attempts {
			return nil, fmt.Errorf("gave up after %d attempts: %w", attempts, err)
		}

		// 0.5x to 1.5x the current backoff.
		wait := backoff/2 + time.Duration(rand.Int64N(int64(backoff)+1))
		wait = max(wait, apiErr.RetryAfter)
		c.logger.Warn("stats api request failed, retrying",
			"path", path,
			"status", apiErr.StatusCode,
			"attempt", attempt,
			"wait", wait,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		backoff *= 2
	}
}

// get performs a GET request with retries and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decode %s: %w: %w", path, ErrMalformedResponse, err)
	}

	return nil
}
