package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrUnavailable = errors.New("provider unavailable")
	ErrExhausted   = errors.New("all providers exhausted")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable error message
	Service string // Optional: provider that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func ValidationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
	}
}

// Unavailable marks a transport-level provider failure. The orchestrator
// records it and falls back; it is never surfaced to callers directly.
func Unavailable(service string, err error) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s is unavailable: %v", service, err),
		Service: service,
	}
}

// Exhausted reports that every provider in the fallback chain soft-failed.
func Exhausted(lastErr error) *AppError {
	return &AppError{
		Err:     ErrExhausted,
		Message: fmt.Sprintf("all execution services failed, last error: %v", lastErr),
	}
}
