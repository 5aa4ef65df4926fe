// Package gateway normalizes code execution over several third-party
// providers behind one contract, falling back across them on failure.
//
// Providers are tried strictly in the configured priority order, one at a
// time. Running them in parallel would double-bill executions and burn
// third-party quota on results we would throw away.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sakif/coderunner/internal/apperror"
	"github.com/sakif/coderunner/internal/provider"
)

// entryPointRe recognizes a C++ program entry point.
var entryPointRe = regexp.MustCompile(`\bint\s+main\s*\(`)

// DefaultProviderTimeout bounds each individual provider attempt.
const DefaultProviderTimeout = 30 * time.Second

// Gateway validates execution requests and drives the provider fallback
// chain. Construct it once and share it; it holds no per-request state.
type Gateway struct {
	providers []provider.Provider
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Gateway trying the given providers in slice order. A zero
// timeout falls back to DefaultProviderTimeout.
func New(providers []provider.Provider, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &Gateway{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// Execute runs code with the given stdin through the provider chain.
//
// A returned error is always a validation failure and means no network call
// was made. Once the chain starts, the outcome is always a Result: the first
// provider that yields a parsed response wins — even when that response says
// the program itself failed — and a chain where every provider was
// unreachable yields a synthesized Result naming provider.ServiceNone.
func (g *Gateway) Execute(ctx context.Context, code, stdin string) (*provider.Result, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.ValidationFailed("code cannot be empty")
	}
	if !entryPointRe.MatchString(code) {
		return nil, apperror.ValidationFailed("code must contain an 'int main(...)' entry point")
	}

	req := provider.Request{Code: code, Stdin: stdin}

	var lastErr error
	for _, p := range g.providers {
		res, err := g.try(ctx, p, req)
		if err != nil {
			// Soft failure: provider unreachable. Record and fall back.
			lastErr = err
			g.logger.Warn("provider unavailable, falling back",
				slog.String("provider", p.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}

		g.logger.Info("execution completed",
			slog.String("provider", p.Name()),
			slog.Bool("success", res.Success),
		)
		return res, nil
	}

	exhausted := apperror.Exhausted(lastErr)
	g.logger.Error("all providers exhausted", slog.String("error", exhausted.Message))
	return &provider.Result{
		Output:  exhausted.Message,
		Error:   fmt.Sprintf("last provider error: %v", lastErr),
		Success: false,
		Service: provider.ServiceNone,
	}, nil
}

func (g *Gateway) try(ctx context.Context, p provider.Provider, req provider.Request) (*provider.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	res, err := p.Execute(callCtx, req)
	if err != nil {
		return nil, apperror.Unavailable(p.Name(), err)
	}

	g.logger.Debug("provider answered",
		slog.String("provider", p.Name()),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}
