// Package apperrors defines the structured error types shared by the CLI,
// the HTTP service and the orchestration layer, together with the process
// exit codes they map to.
//
// All wrapping types implement Unwrap so that errors.Is and errors.As can
// reach domain sentinels such as fibonacci.ErrIndexTooLarge.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Successful execution.
	ExitErrorGeneric  = 1   // Unexpected failure.
	ExitErrorTimeout  = 2   // The -timeout deadline was reached.
	ExitErrorMismatch = 3   // The algorithms disagreed on F(n).
	ExitErrorConfig   = 4   // Invalid flags, environment or config file.
	ExitErrorInput    = 5   // n is outside the range an algorithm accepts.
	ExitErrorCanceled = 130 // Interrupted by SIGINT/SIGTERM.
)

// ConfigError represents a user configuration error, such as an invalid flag
// value or an unreadable config file.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError wraps a failure of a single calculator run and records
// which algorithm and index it concerned.
type CalculationError struct {
	// Algorithm is the display name of the calculator, if known.
	Algorithm string
	// N is the requested index.
	N int
	// Cause is the underlying error.
	Cause error
}

// Error returns the cause message prefixed with the algorithm, when set.
func (e CalculationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s F(%d): %v", e.Algorithm, e.N, e.Cause)
}

// Unwrap returns the underlying cause.
func (e CalculationError) Unwrap() error { return e.Cause }

// NewCalculationError wraps cause, or returns nil when cause is nil.
func NewCalculationError(algorithm string, n int, cause error) error {
	if cause == nil {
		return nil
	}
	return CalculationError{Algorithm: algorithm, N: n, Cause: cause}
}

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	Message string
	Cause   error
}

func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a ServerError with a message and optional cause.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// WrapError wraps err with a formatted context message using %w. It returns
// nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ValidationError represents invalid input: a query parameter, a flag value
// or an index an algorithm rejects.
type ValidationError struct {
	// Field is the name of the offending field.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional, may be nil).
	Value any
	// Cause is the domain error behind the failure, if any.
	Cause error
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap returns the domain error behind the failure.
func (e ValidationError) Unwrap() error { return e.Cause }

// NewValidationError creates a ValidationError without an underlying cause.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// WrapValidationError turns a domain error into a ValidationError for field,
// keeping it reachable through errors.Is.
func WrapValidationError(field string, value any, cause error) error {
	if cause == nil {
		return nil
	}
	return ValidationError{Field: field, Message: cause.Error(), Value: value, Cause: cause}
}

// IsValidationError reports whether err contains a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ExitCodeFor maps an error to the process exit code the CLI reports.
func ExitCodeFor(err error) int {
	var cfgErr ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case IsValidationError(err):
		return ExitErrorInput
	default:
		return ExitErrorGeneric
	}
}
