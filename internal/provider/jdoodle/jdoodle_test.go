package jdoodle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/coderunner/internal/provider"
)

func newTestClient(srv *httptest.Server) *Client {
	cfg := DefaultConfig()
	cfg.Endpoint = srv.URL
	cfg.ClientID = "id-1"
	cfg.ClientSecret = "secret-1"
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(cfg, logger)
}

func TestExecute_SuccessOnEmptyErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req executeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "id-1", req.ClientID)
		assert.Equal(t, "secret-1", req.ClientSecret)
		assert.Equal(t, "cpp17", req.Language)
		assert.Equal(t, "21", req.Stdin)

		json.NewEncoder(w).Encode(executeResponse{
			Output:     "42\n",
			StatusCode: 200,
			CPUTime:    "0.01",
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Execute(context.Background(), provider.Request{
		Code:  "int main() { return 0; }",
		Stdin: "21",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "42\n", res.Output)
	assert.Equal(t, Name, res.Service)
	assert.Equal(t, "0.01", res.ExecutionTime)
}

func TestExecute_PopulatedErrorFieldIsTerminalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(executeResponse{
			Output:     "compilation failed",
			Error:      "main.cpp:2:5: error: use of undeclared identifier",
			StatusCode: 200,
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Execute(context.Background(), provider.Request{Code: "int main() { x; }"})

	require.NoError(t, err, "a parsed failure is terminal, not an adapter error")
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "undeclared identifier")
	assert.Equal(t, Name, res.Service)
}

func TestExecute_HTTPErrorIsHardFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Execute(context.Background(), provider.Request{Code: "int main() {}"})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "401")
}
