package gwclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/coderunner/internal/provider"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRun_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/execute-code", r.URL.Path)

		var req provider.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "21", req.Stdin)

		json.NewEncoder(w).Encode(provider.Result{
			Output:  "42\n",
			Success: true,
			Service: "judge0",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, testLogger())
	res, err := c.Run(context.Background(), "int main() {}", "21")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "42\n", res.Output)
	assert.Equal(t, "judge0", res.Service)
}

func TestRun_ValidationRejectionSurfacesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorEnvelope{
			Error:   "validation_error",
			Message: "code cannot be empty",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, testLogger())
	res, err := c.Run(context.Background(), "", "")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "code cannot be empty")
}

func TestRun_PlainHTTPErrorIsReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, testLogger())
	_, err := c.Run(context.Background(), "int main() {}", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
