// Package gwclient is the HTTP client for the execution gateway API,
// implementing the session.Runner contract.
package gwclient

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

// DefaultTimeout covers the entire gateway round trip, including the
// server-side fallback chain.
const DefaultTimeout = 2 * time.Minute

// Client calls the gateway's execute endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the gateway at baseURL (no trailing slash). A
// zero timeout falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Run submits code and stdin for execution and returns the gateway's
// canonical result. Any non-2xx response is an error; for the gateway's JSON
// error envelope the human-readable message is surfaced.
func (c *Client) Run(ctx context.Context, code, stdin string) (*provider.Result, error) {
	body, err := json.Marshal(provider.Request{Code: code, Stdin: stdin})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + "/api/execute-code"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope errorEnvelope
		if decodeErr := json.NewDecoder(resp.Body).Decode(&envelope); decodeErr == nil && envelope.Message != "" {
			return nil, fmt.Errorf("gateway rejected request: %s", envelope.Message)
		}
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var result provider.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding result: %w", err)
	}

	c.logger.Debug("gateway call finished",
		slog.String("service", result.Service),
		slog.Bool("success", result.Success),
	)
	return &result, nil
}
