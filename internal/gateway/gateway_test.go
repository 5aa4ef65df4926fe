package gateway_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/coderunner/internal/apperror"
	"github.com/sakif/coderunner/internal/gateway"
	"github.com/sakif/coderunner/internal/provider"
)

const validCode = "int main() { return 0; }"

// stubProvider returns a scripted result or error and counts invocations.
type stubProvider struct {
	name   string
	result *provider.Result
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func okProvider(name, output string) *stubProvider {
	return &stubProvider{name: name, result: &provider.Result{
		Output:  output,
		Success: true,
		Service: name,
	}}
}

func downProvider(name string) *stubProvider {
	return &stubProvider{name: name, err: errors.New(name + ": connection refused")}
}

func TestExecute_ValidationFailsFast(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty code", ""},
		{"whitespace only", "   \n\t"},
		{"no entry point", `void helper() { }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := okProvider("judge0", "unused")
			gw := gateway.New([]provider.Provider{p}, time.Second, testLogger())

			res, err := gw.Execute(context.Background(), tt.code, "")

			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Nil(t, res)
			assert.Zero(t, p.calls, "validation failures must not reach any provider")
		})
	}
}

func TestExecute_FirstProviderWins(t *testing.T) {
	first := okProvider("judge0", "42\n")
	second := okProvider("codexapi", "unused")

	gw := gateway.New([]provider.Provider{first, second}, time.Second, testLogger())
	res, err := gw.Execute(context.Background(), validCode, "21")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "judge0", res.Service)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestExecute_FallsBackPastUnavailableProvider(t *testing.T) {
	first := downProvider("judge0")
	second := okProvider("codexapi", "42\n")
	third := okProvider("jdoodle", "unused")
	fourth := okProvider("glot", "unused")

	gw := gateway.New([]provider.Provider{first, second, third, fourth}, time.Second, testLogger())
	res, err := gw.Execute(context.Background(), validCode, "")

	require.NoError(t, err)
	assert.Equal(t, "codexapi", res.Service)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls, "later providers must not run after a terminal result")
	assert.Zero(t, fourth.calls)
}

func TestExecute_ProgramFailureIsTerminalNotFallback(t *testing.T) {
	first := &stubProvider{name: "judge0", result: &provider.Result{
		Error:   "main.cpp:1: error: expected ';'",
		Success: false,
		Service: "judge0",
	}}
	second := okProvider("codexapi", "unused")

	gw := gateway.New([]provider.Provider{first, second}, time.Second, testLogger())
	res, err := gw.Execute(context.Background(), validCode, "")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "judge0", res.Service)
	assert.Zero(t, second.calls, "a provider that ran the program is terminal even on program failure")
}

func TestExecute_AllProvidersExhausted(t *testing.T) {
	providers := []provider.Provider{
		downProvider("judge0"),
		downProvider("codexapi"),
		downProvider("jdoodle"),
		downProvider("glot"),
	}

	gw := gateway.New(providers, time.Second, testLogger())
	res, err := gw.Execute(context.Background(), validCode, "")

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, provider.ServiceNone, res.Service)
	assert.Contains(t, res.Output, "glot: connection refused", "output embeds the last captured error")
	assert.Contains(t, res.Error, "glot: connection refused")
}

func TestExecute_PerProviderTimeoutTreatedAsSoftFailure(t *testing.T) {
	slow := &stubProviderFunc{name: "judge0", fn: func(ctx context.Context) (*provider.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	fallback := okProvider("codexapi", "42\n")

	gw := gateway.New([]provider.Provider{slow, fallback}, 10*time.Millisecond, testLogger())
	res, err := gw.Execute(context.Background(), validCode, "")

	require.NoError(t, err)
	assert.Equal(t, "codexapi", res.Service)
	assert.True(t, res.Success)
}

// stubProviderFunc lets a test control Execute behaviour with the call's own
// context, e.g. to simulate a provider that never answers.
type stubProviderFunc struct {
	name string
	fn   func(ctx context.Context) (*provider.Result, error)
}

func (s *stubProviderFunc) Name() string { return s.name }

func (s *stubProviderFunc) Execute(ctx context.Context, req provider.Request) (*provider.Result, error) {
	return s.fn(ctx)
}
