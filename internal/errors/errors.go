package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error, including failed tasks.
	ExitErrorTimeout  = 2   // Indicates the run timed out.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorNoInput  = 5   // Indicates that no valid input could be read.
	ExitErrorCanceled = 130 // Indicates the run was canceled (e.g., SIGINT).
)

var (
	// ErrNoInput is returned when the input stream ends or fails before a
	// valid value was read.
	ErrNoInput = errors.New("no input available")

	// ErrTooManyAttempts is returned when a bounded prompt exhausts its
	// retry budget without receiving a valid value.
	ErrTooManyAttempts = errors.New("too many invalid attempts")
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
//
// Returns:
//   - string: The configuration error message.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// TaskError records the failure of a single sequence task while preserving
// the original cause. A failed task still releases the completion barrier;
// the error travels with the task outcome instead.
type TaskError struct {
	// Index is the 1-based sequence position of the failed task.
	Index int
	// Cause is the underlying error (or recovered panic) of the task.
	Cause error
}

// Error returns a message naming the task and its cause.
//
// Returns:
//   - string: The task index followed by the cause.
func (e TaskError) Error() string {
	return fmt.Sprintf("task %d: %v", e.Index, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
//
// Returns:
//   - error: The cause of the task failure.
func (e TaskError) Unwrap() error { return e.Cause }

// TimeoutError represents a run timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
//
// Returns:
//   - string: The operation name and the exceeded limit.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
//
// Returns:
//   - string: The field name and the validation message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if err wraps context.Canceled or context.DeadlineExceeded.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code that reports it.
//
// Parameters:
//   - err: The error returned by a run, or nil.
//
// Returns:
//   - int: ExitSuccess for nil, otherwise the code of the error's class.
func ExitCodeFor(err error) int {
	var configErr ConfigError
	var validationErr ValidationError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, ErrNoInput), errors.Is(err, ErrTooManyAttempts):
		return ExitErrorNoInput
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// ColorProvider supplies the escape sequences used when reporting errors.
// A nil provider prints plain text.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// HandleRunError prints a diagnostic for a run-level error and returns the
// matching exit code. Per-task failures are reported by the presenter and
// never reach this function.
//
// Parameters:
//   - err: The run-level error, or nil.
//   - duration: How long the run lasted before it failed.
//   - out: The writer for the diagnostic.
//   - colors: The escape sequences to use, or nil for plain text.
//
// Returns:
//   - int: The exit code for err.
func HandleRunError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	red, yellow, reset := "", "", ""
	if colors != nil {
		red, yellow, reset = colors.Red(), colors.Yellow(), colors.Reset()
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The run did not complete after %s%s%s.%s\n",
			red, yellow, duration, red, reset)
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled by user.%s\n", yellow, reset)
	case ExitErrorNoInput:
		fmt.Fprintf(out, "%sThere was an error: %v%s\n", red, err, reset)
	default:
		fmt.Fprintf(out, "%sStatus: Failure. %v%s\n", red, err, reset)
	}
	return code
}
