package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("code cannot be empty"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Unavailable wraps ErrUnavailable",
			err:       Unavailable("judge0", errors.New("connection refused")),
			target:    ErrUnavailable,
			wantMatch: true,
		},
		{
			name:      "Exhausted wraps ErrExhausted",
			err:       Exhausted(errors.New("timeout")),
			target:    ErrExhausted,
			wantMatch: true,
		},
		{
			name:      "Unavailable does NOT match ErrValidation",
			err:       Unavailable("glot", errors.New("timeout")),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "wrapped ValidationFailed still matches through fmt.Errorf",
			err:       fmt.Errorf("executing: %w", ValidationFailed("no entry point")),
			target:    ErrValidation,
			wantMatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("code cannot be empty"),
			wantMessage: "code cannot be empty",
		},
		{
			name:        "Unavailable names the service",
			err:         Unavailable("jdoodle", errors.New("connection reset")),
			wantMessage: "jdoodle is unavailable: connection reset",
		},
		{
			name:        "Exhausted embeds the last error",
			err:         Exhausted(errors.New("judge0: poll budget exceeded")),
			wantMessage: "all execution services failed, last error: judge0: poll budget exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnavailableService(t *testing.T) {
	err := Unavailable("codexapi", errors.New("502"))
	if err.Service != "codexapi" {
		t.Errorf("Service = %q, want %q", err.Service, "codexapi")
	}
}
