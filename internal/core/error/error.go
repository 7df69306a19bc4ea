package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is returned when a Redis key does not exist.
	RedisNotFoundMessage = "redis key not found"
	// GraphErrorMessage describes Neo4j related failures.
	GraphErrorMessage = "graph database operation failed"
	// GraphUnavailableMessage is returned when Neo4j cannot be reached.
	GraphUnavailableMessage = "graph database unavailable"
	// GraphQueryMessage is returned when Neo4j rejects a query.
	GraphQueryMessage = "invalid graph query"
	// LLMErrorMessage describes model provider failures.
	LLMErrorMessage = "language model request failed"
	// ValidationErrorMessage is the prefix for rejected input.
	ValidationErrorMessage = "invalid request"
)

// ErrValidation marks errors caused by bad caller input.
var ErrValidation = errors.New("validation failed")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Validation builds a 400 error wrapping ErrValidation.
func Validation(format string, args ...any) *AppError {
	return New(fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...)), http.StatusBadRequest, ValidationErrorMessage)
}

// WrapLLM maps model provider errors to a gateway failure.
func WrapLLM(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(err, http.StatusBadGateway, LLMErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500 when none is attached.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
