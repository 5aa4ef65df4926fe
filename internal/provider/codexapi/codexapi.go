// Package codexapi implements the provider adapter for the Codex compiler
// API. Codex signals success through a literal "200" status field inside the
// response body, independent of the HTTP status.
package codexapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/coderunner/internal/provider"
)

// Name is the canonical service identifier reported in results.
const Name = "codexapi"

// Config holds the Codex connection settings.
type Config struct {
	// Endpoint receives form-encoded execution requests.
	Endpoint string
	// Language is Codex's language key for C++.
	Language string
	// Timeout applies to the single HTTP call.
	Timeout time.Duration
}

// DefaultConfig returns the settings for the public Codex endpoint.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://api.codex.jaagrav.in",
		Language: "cpp",
		Timeout:  15 * time.Second,
	}
}

// Client is the Codex adapter.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a Codex client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return Name }

type codexResponse struct {
	Output string `json:"output"`
	Error  string `json:"error"`
	Status string `json:"status"`
}

// Execute runs the code in one call. Success means the body status is the
// literal "200"; any other parsed status is a terminal program failure.
func (c *Client) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	form := url.Values{
		"code":     {req.Code},
		"language": {c.config.Language},
		"input":    {req.Stdin},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("codexapi: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("codexapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("codexapi: unexpected status %d", resp.StatusCode)
	}

	var body codexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("codexapi: decoding response: %w", err)
	}

	if body.Status == "200" {
		return &provider.Result{
			Output:  body.Output,
			Success: true,
			Service: Name,
		}, nil
	}

	c.logger.Debug("codexapi reported failure", slog.String("status", body.Status))
	return &provider.Result{
		Output:  body.Output,
		Error:   failureText(body),
		Success: false,
		Service: Name,
	}, nil
}

func failureText(body codexResponse) string {
	if body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("execution failed with status %s", body.Status)
}
