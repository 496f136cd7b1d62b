// Package apperrors defines the application error types and exit codes.
// Every type supports errors.Is and errors.As through Unwrap where it carries
// a cause.
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess       = 0   // Successful run.
	ExitErrorGeneric  = 1   // Unclassified failure.
	ExitErrorTimeout  = 2   // The --timeout limit was reached.
	ExitErrorMismatch = 3   // Two backends produced different digits.
	ExitErrorConfig   = 4   // Invalid flags, environment or digit specification.
	ExitErrorCanceled = 130 // Interrupted by SIGINT/SIGTERM.
)

// ConfigError is a user input error detected before any computation starts.
type ConfigError struct {
	// Message is the text shown to the user.
	Message string
	// Cause is the underlying error, if any (e.g. a *digitspec.SpecError).
	Cause error
}

// Error returns Message.
func (e ConfigError) Error() string { return e.Message }

// Unwrap returns Cause.
func (e ConfigError) Unwrap() error { return e.Cause }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// WrapConfigError turns err into a ConfigError that keeps err's message and
// remains inspectable with errors.As.
func WrapConfigError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigError{Message: err.Error(), Cause: err}
}

// CalculationError wraps a failure raised while computing digits.
type CalculationError struct {
	// Algorithm is the backend that failed, if known.
	Algorithm string
	// Cause is the underlying error.
	Cause error
}

// Error returns the message of Cause, prefixed with Algorithm when set.
func (e CalculationError) Error() string {
	if e.Algorithm != "" {
		return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
	}
	return e.Cause.Error()
}

// Unwrap returns Cause.
func (e CalculationError) Unwrap() error { return e.Cause }

// ServerError is an HTTP server failure.
type ServerError struct {
	Message string
	Cause   error
}

// Error combines Message and Cause.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns Cause.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a ServerError.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// ValidationError reports an invalid request or configuration field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error renders the field and message.
func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// WrapError adds context to err with %w. It returns nil for a nil err.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to its process exit code.
func ExitCodeFor(err error) int {
	var cfgErr ConfigError
	var valErr ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &valErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}
