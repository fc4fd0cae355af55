// Package client talks to a running ledstripd, either over its Unix socket
// or over the HTTP API.
package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"

	"github.com/jmylchreest/ledstripd/internal/config"
)

var dial = net.Dial

// ClientInterface defines the methods for interacting with ledstripd.
// Used for testability and mocking in the CLI.
type ClientInterface interface {
	GetState() (map[string]any, error)
	SetState(props map[string]any) error
	Identify() error
	GetVersion() (map[string]any, error)
	GetLevel() (string, error)
	SetLevel(level string) error
}

var (
	_ ClientInterface = (*Client)(nil)
	_ ClientInterface = (*HTTPClient)(nil)
)

// Client represents a connection to ledstripd over its Unix socket.
type Client struct {
	logger *slog.Logger
	socket string
}

// New creates a new socket client. An empty socket selects the runtime default.
func New(logger *slog.Logger, socket string) *Client {
	if socket == "" {
		socket = config.GetRuntimeSocketPath()
		logger.Debug("Using default socket path", "socket", socket)
	} else {
		logger.Debug("Using provided socket path", "socket", socket)
	}

	return &Client{
		logger: logger,
		socket: socket,
	}
}

// request sends one action to ledstripd and decodes the response.
func (c *Client) request(action string, data map[string]any) (map[string]any, error) {
	c.logger.Debug("Connecting to socket", "socket", c.socket)
	conn, err := dial("unix", c.socket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to socket: %w", err)
	}
	defer conn.Close()

	req := map[string]any{"action": action}
	if data != nil {
		req["data"] = data
	}
	c.logger.Debug("Sending request", "request", req)
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	var resp map[string]any
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	c.logger.Debug("Received response", "response", resp)

	if msg, ok := resp["error"].(string); ok {
		return nil, fmt.Errorf("server error: %s", msg)
	}
	return resp, nil
}

// Ping checks that the daemon is answering.
func (c *Client) Ping() error {
	_, err := c.request("ping", nil)
	return err
}

// GetState returns the strip: target, current state and animation flag.
func (c *Client) GetState() (map[string]any, error) {
	resp, err := c.request("get_state", nil)
	if err != nil {
		return nil, err
	}
	s, ok := resp["strip"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid response format: missing strip")
	}
	return s, nil
}

// SetState sets one or more of on, brightness, hue, saturation and white.
// Nothing is applied when any value is rejected.
func (c *Client) SetState(props map[string]any) error {
	_, err := c.request("set_state", props)
	return err
}

// Identify starts the identify blink sequence.
func (c *Client) Identify() error {
	_, err := c.request("identify", nil)
	return err
}

// GetVersion returns the running daemon's version information.
func (c *Client) GetVersion() (map[string]any, error) {
	resp, err := c.request("version", nil)
	if err != nil {
		return nil, err
	}
	delete(resp, "status")
	return resp, nil
}

// GetLevel returns the daemon's log level.
func (c *Client) GetLevel() (string, error) {
	resp, err := c.request("get_level", nil)
	if err != nil {
		return "", err
	}
	level, _ := resp["level"].(string)
	return level, nil
}

// SetLevel changes the daemon's log level.
func (c *Client) SetLevel(level string) error {
	_, err := c.request("set_level", map[string]any{"level": level})
	return err
}
