// Package judge0 implements the provider adapter for the Judge0 CE API.
//
// Judge0 is the only asynchronous backend: a submission returns an opaque
// token, and the result must be polled for until the submission leaves the
// queued/processing states.
package judge0

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
const Name = "judge0"

// Judge0 submission status ids. 1 and 2 mean the submission is still being
// processed; 3 means the program ran and terminated normally. Everything else
// is a terminal failure (compile error, runtime error, time limit, ...).
const (
	statusInQueue    = 1
	statusProcessing = 2
	statusAccepted   = 3
)

// Config holds the Judge0 connection settings.
type Config struct {
	// BaseURL is the API root, without a trailing slash.
	BaseURL string
	// APIKey and APIHost are the RapidAPI auth headers.
	APIKey  string
	APIHost string
	// LanguageID selects the compiler; 54 is C++ (GCC 9.2.0).
	LanguageID int
	// PollInterval is the delay between result polls.
	PollInterval time.Duration
	// MaxPollAttempts bounds the poll loop; exceeding it is a hard failure.
	MaxPollAttempts int
	// Timeout applies to each individual HTTP call.
	Timeout time.Duration
}

// DefaultConfig returns the settings for the hosted Judge0 CE instance.
func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://judge0-ce.p.rapidapi.com",
		APIHost:         "judge0-ce.p.rapidapi.com",
		LanguageID:      54,
		PollInterval:    time.Second,
		MaxPollAttempts: 10,
		Timeout:         10 * time.Second,
	}
}

// Client is the Judge0 adapter. It is stateless between Execute calls.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger

	// wait is the poll delay; replaced in tests to avoid wall-clock waits.
	wait func(ctx context.Context, d time.Duration) error
}

// New creates a Judge0 client.
func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		wait:   waitFor,
	}
}

func (c *Client) Name() string { return Name }

type submissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin,omitempty"`
}

type submissionToken struct {
	Token string `json:"token"`
}

type submissionResult struct {
	Stdout        string  `json:"stdout"`
	Stderr        string  `json:"stderr"`
	CompileOutput string  `json:"compile_output"`
	Time          string  `json:"time"`
	Memory        float64 `json:"memory"`
	Status        struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
}

// Execute submits the code, then polls for the result until the submission is
// terminal or the poll budget runs out. A spent poll budget is returned as an
// error, not a result, so the orchestrator falls back to the next provider.
func (c *Client) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	token, err := c.submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("judge0: submitting: %w", err)
	}

	c.logger.Debug("judge0 submission created", slog.String("token", token))

	for attempt := 1; attempt <= c.config.MaxPollAttempts; attempt++ {
		if err := c.wait(ctx, c.config.PollInterval); err != nil {
			return nil, fmt.Errorf("judge0: waiting for result: %w", err)
		}

		sub, err := c.poll(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("judge0: polling: %w", err)
		}

		switch sub.Status.ID {
		case statusInQueue, statusProcessing:
			continue
		case statusAccepted:
			return &provider.Result{
				Output:        sub.Stdout,
				Success:       true,
				Service:       Name,
				ExecutionTime: sub.Time,
			}, nil
		default:
			return &provider.Result{
				Output:        sub.Stdout,
				Error:         diagnostic(sub),
				Success:       false,
				Service:       Name,
				ExecutionTime: sub.Time,
			}, nil
		}
	}

	return nil, fmt.Errorf("judge0: submission %s still pending after %d polls", token, c.config.MaxPollAttempts)
}

func (c *Client) submit(ctx context.Context, req provider.Request) (string, error) {
	body, err := json.Marshal(submissionRequest{
		SourceCode: req.Code,
		LanguageID: c.config.LanguageID,
		Stdin:      req.Stdin,
	})
	if err != nil {
		return "", err
	}

	url := c.config.BaseURL + "/submissions?base64_encoded=false&wait=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuth(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var tok submissionToken
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decoding token: %w", err)
	}
	if tok.Token == "" {
		return "", fmt.Errorf("empty submission token")
	}
	return tok.Token, nil
}

func (c *Client) poll(ctx context.Context, token string) (*submissionResult, error) {
	url := c.config.BaseURL + "/submissions/" + token + "?base64_encoded=false"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var sub submissionResult
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return nil, fmt.Errorf("decoding submission: %w", err)
	}
	return &sub, nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.config.APIHost)
}

// diagnostic picks the most useful failure text from a terminal submission.
func diagnostic(sub *submissionResult) string {
	switch {
	case sub.CompileOutput != "":
		return sub.CompileOutput
	case sub.Stderr != "":
		return sub.Stderr
	default:
		return sub.Status.Description
	}
}

func waitFor(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
