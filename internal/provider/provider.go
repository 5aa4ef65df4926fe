// Package provider defines the canonical request/result shapes for remote code
// execution and the interface every backend adapter implements.
//
// Each third-party execution service speaks its own wire format and signals
// success by its own convention. Adapters translate between that and the
// canonical Result here, so the rest of the system never sees a provider's raw
// payload.
package provider

import "context"

// Request is a single code execution request. It is transient — nothing in
// this repository persists it.
type Request struct {
	Code  string `json:"code"`
	Stdin string `json:"input,omitempty"`
}

// Result is the normalized outcome of an execution, independent of which
// provider produced it.
//
// Success is true only when the provider reported that the program terminated
// normally. A provider that was unreachable or timed out never produces a
// Result at all — its adapter returns an error instead, and the orchestrator
// falls back to the next provider.
type Result struct {
	Output          string `json:"output"`
	Error           string `json:"error,omitempty"`
	Success         bool   `json:"success"`
	Service         string `json:"service"`
	CompilationTime string `json:"compilationTime,omitempty"`
	ExecutionTime   string `json:"executionTime,omitempty"`
}

// ServiceNone is the sentinel Service value used when every provider in the
// fallback chain was unavailable.
const ServiceNone = "none"

// Provider is a stateless execution backend. Execute either returns a parsed
// Result (terminal — even if the program itself failed to compile or run) or
// an error meaning the provider could not be used at all (network failure,
// timeout, malformed response). Adapters keep no state between invocations.
type Provider interface {
	Name() string
	Execute(ctx context.Context, req Request) (*Result, error)
}
