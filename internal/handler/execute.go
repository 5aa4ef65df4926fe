package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/coderunner/internal/provider"
)

// Executor is the slice of the gateway the handler needs. Declared here so
// tests can substitute a double without standing up real providers.
type Executor interface {
	Execute(ctx context.Context, code, stdin string) (*provider.Result, error)
}

// ExecuteHandler handles code execution requests.
type ExecuteHandler struct {
	gateway Executor
	logger  *slog.Logger
}

// NewExecuteHandler creates a new ExecuteHandler.
func NewExecuteHandler(gateway Executor, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// HandleExecuteCode processes an incoming C++ execution request and writes
// the gateway's canonical result. Validation failures come back as a 400
// error envelope; once the provider chain runs, the response is always 200
// with the result body — including the synthesized all-providers-down result.
func (h *ExecuteHandler) HandleExecuteCode(w http.ResponseWriter, r *http.Request) {
	var req provider.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: "request body must be valid JSON",
		})
		return
	}

	result, err := h.gateway.Execute(r.Context(), req.Code, req.Stdin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
