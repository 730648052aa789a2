// Package apperrors provides tests for application error types.
package apperrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("invalid value %d for flag %s", 42, "--workers"),
			expected: "invalid value 42 for flag --workers",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestTaskError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		index       int
		cause       error
		expectedMsg string
		checkIs     error
		checkUnwrap bool
	}{
		{
			name:        "Error names task and cause",
			index:       7,
			cause:       errors.New("boom"),
			expectedMsg: "task 7: boom",
		},
		{
			name:        "Unwrap returns cause",
			index:       1,
			cause:       errors.New("original error"),
			expectedMsg: "task 1: original error",
			checkUnwrap: true,
		},
		{
			name:        "errors.Is works with wrapped error",
			index:       3,
			cause:       context.Canceled,
			expectedMsg: "task 3: context canceled",
			checkIs:     context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := TaskError{Index: tt.index, Cause: tt.cause}

			if err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, err.Error())
			}

			if tt.checkUnwrap && err.Unwrap() != tt.cause {
				t.Error("Unwrap should return the original cause")
			}

			if tt.checkIs != nil && !errors.Is(err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	t.Parallel()
	var err error = TimeoutError{Operation: "sequence", Limit: 30 * time.Second}
	if got, want := err.Error(), `operation "sequence" timed out after 30s`; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	var timeoutErr TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatal("expected error to be TimeoutError type")
	}
	if timeoutErr.Limit != 30*time.Second {
		t.Errorf("expected Limit 30s, got %v", timeoutErr.Limit)
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      ValidationError
		expected string
	}{
		{
			name:     "Error returns formatted message",
			err:      ValidationError{Field: "n", Message: "must be between 1 and 64"},
			expected: `validation error for "n": must be between 1 and 64`,
		},
		{
			name:     "Error with different field",
			err:      ValidationError{Field: "workers", Message: "must be non-negative"},
			expected: `validation error for "workers": must be non-negative`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var err error = tt.err
			if err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, err.Error())
			}
			var validationErr ValidationError
			if !errors.As(err, &validationErr) {
				t.Error("expected error to be ValidationError type")
			}
		})
	}
}

func TestErrorTypes_ErrorsAsWithWrapping(t *testing.T) {
	t.Parallel()

	t.Run("ValidationError wrapped in TaskError", func(t *testing.T) {
		t.Parallel()
		inner := ValidationError{Field: "index", Message: "must be non-negative"}
		err := TaskError{Index: 2, Cause: inner}

		var validationErr ValidationError
		if !errors.As(err, &validationErr) {
			t.Error("errors.As should find ValidationError through TaskError")
		}
	})

	t.Run("ValidationError wrapped with WrapError", func(t *testing.T) {
		t.Parallel()
		inner := ValidationError{Field: "n", Message: "too large"}
		err := WrapError(inner, "config check failed")

		var validationErr ValidationError
		if !errors.As(err, &validationErr) {
			t.Error("errors.As should find ValidationError through WrapError")
		}
	})
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		original    error
		format      string
		args        []any
		expectedMsg string
		expectNil   bool
		checkIs     error
	}{
		{
			name:        "wraps error with context",
			original:    errors.New("file not found"),
			format:      "failed to load config",
			expectedMsg: "failed to load config: file not found",
		},
		{
			name:        "preserves error chain",
			original:    ErrNoInput,
			format:      "reading sequence length",
			expectedMsg: "reading sequence length: no input available",
			checkIs:     ErrNoInput,
		},
		{
			name:      "returns nil for nil error",
			original:  nil,
			format:    "some context",
			expectNil: true,
		},
		{
			name:        "supports format arguments",
			original:    errors.New("unexpected EOF"),
			format:      "reading %s at attempt %d",
			args:        []any{"stdin", 3},
			expectedMsg: "reading stdin at attempt 3: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := WrapError(tt.original, tt.format, tt.args...)

			if tt.expectNil {
				if wrapped != nil {
					t.Error("WrapError(nil, ...) should return nil")
				}
				return
			}

			if wrapped == nil {
				t.Fatal("wrapped error should not be nil")
			}

			if wrapped.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, wrapped.Error())
			}

			if tt.checkIs != nil && !errors.Is(wrapped, tt.checkIs) {
				t.Errorf("wrapped error should preserve %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"context.Canceled", context.Canceled, true},
		{"context.DeadlineExceeded", context.DeadlineExceeded, true},
		{"wrapped context.Canceled", WrapError(context.Canceled, "operation canceled"), true},
		{"regular error", errors.New("some error"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := IsContextError(tt.err)
			if result != tt.expected {
				t.Errorf("IsContextError(%v) = %v, expected %v", tt.err, result, tt.expected)
			}
		})
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"deadline", context.DeadlineExceeded, ExitErrorTimeout},
		{"timeout error", TimeoutError{Operation: "run", Limit: time.Second}, ExitErrorTimeout},
		{"canceled", fmt.Errorf("waiting: %w", context.Canceled), ExitErrorCanceled},
		{"no input", WrapError(ErrNoInput, "prompt"), ExitErrorNoInput},
		{"too many attempts", ErrTooManyAttempts, ExitErrorNoInput},
		{"config", NewConfigError("bad"), ExitErrorConfig},
		{"validation", ValidationError{Field: "n", Message: "bad"}, ExitErrorConfig},
		{"task", TaskError{Index: 1, Cause: errors.New("x")}, ExitErrorGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCodeFor(tt.err); got != tt.want {
				t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleRunError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		wantCode int
		contains string
	}{
		{"nil error", nil, ExitSuccess, ""},
		{"timeout", context.DeadlineExceeded, ExitErrorTimeout, "Timeout"},
		{"canceled", context.Canceled, ExitErrorCanceled, "Canceled"},
		{"no input", ErrNoInput, ExitErrorNoInput, "There was an error: no input available"},
		{"generic", errors.New("disk on fire"), ExitErrorGeneric, "disk on fire"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleRunError(tt.err, time.Second, &buf, nil)
			if code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, code)
			}
			if tt.contains != "" && !strings.Contains(buf.String(), tt.contains) {
				t.Errorf("expected output to contain %q, got %q", tt.contains, buf.String())
			}
			if tt.err == nil && buf.Len() != 0 {
				t.Errorf("expected no output for nil error, got %q", buf.String())
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorNoInput":  ExitErrorNoInput,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess should be 0, got %d", ExitSuccess)
	}
	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}
