// Package glot implements the provider adapter for the glot.io run API.
// Glot has no explicit success flag at all: a run succeeded when the parsed
// body has output and carries no error text on stderr.
package glot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/coderunner/internal/provider"
)

// Name is the canonical service identifier reported in results.
const Name = "glot"

// Config holds the glot.io connection settings.
type Config struct {
	// Endpoint is the language-specific run URL.
	Endpoint string
	// Token is the glot.io API token, sent as "Authorization: Token <t>".
	Token string
	// FileName is the name given to the single source file in the payload.
	FileName string
	Timeout  time.Duration
}

// DefaultConfig returns the settings for the hosted glot.io API.
func DefaultConfig() Config {
	return Config{
		Endpoint: "https://glot.io/api/run/cpp/latest",
		FileName: "main.cpp",
		Timeout:  15 * time.Second,
	}
}

// Client is the glot.io adapter.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a glot.io client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return Name }

type runFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type runRequest struct {
	Files []runFile `json:"files"`
	Stdin string    `json:"stdin,omitempty"`
}

type runResponse struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Error  string `json:"error"`
}

// Execute runs the code in one call. Success means the parsed body reported
// nothing on stderr and no run error; otherwise the diagnostic text becomes a
// terminal program failure.
func (c *Client) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	body, err := json.Marshal(runRequest{
		Files: []runFile{{Name: c.config.FileName, Content: req.Code}},
		Stdin: req.Stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("glot: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("glot: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+c.config.Token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("glot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("glot: unexpected status %d", resp.StatusCode)
	}

	var out runResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("glot: decoding response: %w", err)
	}

	if out.Error != "" || out.Stderr != "" {
		c.logger.Debug("glot reported failure", slog.String("error", out.Error))
		return &provider.Result{
			Output:  out.Stdout,
			Error:   failureText(out),
			Success: false,
			Service: Name,
		}, nil
	}

	return &provider.Result{
		Output:  out.Stdout,
		Success: true,
		Service: Name,
	}, nil
}

func failureText(out runResponse) string {
	if out.Stderr != "" {
		return out.Stderr
	}
	return out.Error
}
