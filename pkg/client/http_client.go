package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPClient talks to the ledstripd HTTP API.
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTP creates a client for the API at baseURL. token may be empty.
func NewHTTP(logger *slog.Logger, baseURL string, token string) *HTTPClient {
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// StatusError is returned when the API answers with a 4xx or 5xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Code, e.Message)
}

// statusError extracts the message from a huma problem document
// ({"detail": ...}), a socket style {"error": ...} body, or the raw body.
func statusError(code int, body []byte) *StatusError {
	var problem struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &problem) == nil {
		switch {
		case problem.Detail != "":
			msg = problem.Detail
		case problem.Error != "":
			msg = problem.Error
		}
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &StatusError{Code: code, Message: msg}
}

// request sends body as JSON and decodes the answer into resp when both are
// non-nil.
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	url := c.baseURL + path

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, payload)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	httpResp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("HTTP request", "method", method, "url", url, "status", httpResp.StatusCode, "duration", time.Since(start))

	if httpResp.StatusCode >= http.StatusBadRequest {
		return statusError(httpResp.StatusCode, respBody)
	}
	if resp == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks the public health endpoint.
func (c *HTTPClient) Health() error {
	return c.request(http.MethodGet, "/api/v1/health", nil, nil)
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion() (map[string]any, error) {
	var resp map[string]any
	if err := c.request(http.MethodGet, "/api/v1/version", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetState returns the strip.
func (c *HTTPClient) GetState() (map[string]any, error) {
	var resp map[string]any
	if err := c.request(http.MethodGet, "/api/v1/strip", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SetState sets one or more strip properties.
func (c *HTTPClient) SetState(props map[string]any) error {
	return c.request(http.MethodPut, "/api/v1/strip/state", props, nil)
}

// Identify starts the identify blink sequence.
func (c *HTTPClient) Identify() error {
	return c.request(http.MethodPost, "/api/v1/strip/identify", nil, nil)
}

// GetLevel returns the daemon's log level.
func (c *HTTPClient) GetLevel() (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	if err := c.request(http.MethodGet, "/api/v1/logging/level", nil, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}

// SetLevel changes the daemon's log level.
func (c *HTTPClient) SetLevel(level string) error {
	return c.request(http.MethodPut, "/api/v1/logging/level", map[string]any{"level": level}, nil)
}
