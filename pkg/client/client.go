// Package client provides a small HTTP client for the kryashell control API,
// used by the CLI subcommands that talk to a running shell.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Client provides HTTP client functionality to communicate with the shell
// control server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger // Optional logger for client operations
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://127.0.0.1:8790/api",
		Timeout: 10 * time.Second,
	}
}

// New creates a new control API client
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Client{
		baseURL: config.BaseURL,
		logger:  config.Logger,
		client:  &http.Client{Timeout: config.Timeout},
	}
}

// IsReachable checks if the control server is running and reachable
func (c *Client) IsReachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		c.logger.Debug("Failed to create request for reachability check", "error", err)
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("Control server unreachable", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

// Status fetches the backend status snapshot
func (c *Client) Status(ctx context.Context) (BackendStatus, error) {
	var status BackendStatus
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/status", &status); err != nil {
		return BackendStatus{}, err
	}
	return status, nil
}

// StartBackend asks the shell to start the backend (idempotent)
func (c *Client) StartBackend(ctx context.Context) error {
	c.logger.Debug("Starting backend")
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/start", nil)
}

// StopBackend asks the shell to stop the backend (idempotent)
func (c *Client) StopBackend(ctx context.Context) error {
	c.logger.Debug("Stopping backend")
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/stop", nil)
}

// RestartBackend asks the shell to stop and freshly start the backend
func (c *Client) RestartBackend(ctx context.Context) error {
	c.logger.Debug("Restarting backend")
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/restart", nil)
}

// Events fetches up to limit recent journal entries, newest first
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	url := c.baseURL + "/events"
	if limit > 0 {
		url += "?limit=" + strconv.Itoa(limit)
	}
	var events []Event
	if err := c.doJSON(ctx, http.MethodGet, url, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// doJSON performs a request with common error handling; out may be nil when
// the response body is not needed.
func (c *Client) doJSON(ctx context.Context, method, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("HTTP request failed", "error", err, "url", url)
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.handleErrorResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// handleErrorResponse handles HTTP error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errorResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil || errorResp.Error == "" {
		c.logger.Error("API request failed", "status", resp.StatusCode)
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	c.logger.Error("API request failed", "error", errorResp.Error, "status", resp.StatusCode)
	return fmt.Errorf("API error: %s", errorResp.Error)
}
