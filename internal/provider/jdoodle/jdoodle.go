// Package jdoodle implements the provider adapter for the JDoodle execute
// API. JDoodle always answers 200 for an executed program; success is
// signalled by an explicitly empty error field in the body.
package jdoodle

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
const Name = "jdoodle"

// Config holds the JDoodle connection settings.
type Config struct {
	Endpoint string
	// ClientID and ClientSecret are JDoodle's per-account credentials,
	// sent inside the request body rather than as headers.
	ClientID     string
	ClientSecret string
	// Language and VersionIndex select the compiler; "cpp17"/"0" is GCC.
	Language     string
	VersionIndex string
	Timeout      time.Duration
}

// DefaultConfig returns the settings for the hosted JDoodle API.
func DefaultConfig() Config {
	return Config{
		Endpoint:     "https://api.jdoodle.com/v1/execute",
		Language:     "cpp17",
		VersionIndex: "0",
		Timeout:      15 * time.Second,
	}
}

// Client is the JDoodle adapter.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

// New creates a JDoodle client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return Name }

type executeRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
	Stdin        string `json:"stdin,omitempty"`
}

type executeResponse struct {
	Output     string `json:"output"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	CPUTime    string `json:"cpuTime"`
	Memory     string `json:"memory"`
}

// Execute runs the code in one call. Success means the parsed body carries an
// empty error field; a populated error field is a terminal program failure.
func (c *Client) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	body, err := json.Marshal(executeRequest{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Script:       req.Code,
		Language:     c.config.Language,
		VersionIndex: c.config.VersionIndex,
		Stdin:        req.Stdin,
	})
	if err != nil {
		return nil, fmt.Errorf("jdoodle: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jdoodle: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("jdoodle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jdoodle: unexpected status %d", resp.StatusCode)
	}

	var out executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("jdoodle: decoding response: %w", err)
	}

	result := &provider.Result{
		Output:        out.Output,
		Success:       out.Error == "",
		Service:       Name,
		ExecutionTime: out.CPUTime,
	}
	if out.Error != "" {
		result.Error = out.Error
		c.logger.Debug("jdoodle reported failure", slog.Int("statusCode", out.StatusCode))
	}
	return result, nil
}
