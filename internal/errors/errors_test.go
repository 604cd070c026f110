package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

var errDomain = errors.New("fibonacci: index must be non-negative")

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("invalid value %d for flag %s", -3, "-n")
	if err.Error() != "invalid value -3 for flag -n" {
		t.Errorf("unexpected message %q", err.Error())
	}
	var configErr ConfigError
	if !errors.As(err, &configErr) {
		t.Error("expected error to be ConfigError type")
	}
}

func TestCalculationError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expectedMsg string
		is          error
	}{
		{
			name:        "without algorithm",
			err:         CalculationError{Cause: errors.New("boom")},
			expectedMsg: "boom",
		},
		{
			name:        "with algorithm",
			err:         NewCalculationError("Naive Recursion", 40, context.DeadlineExceeded),
			expectedMsg: "Naive Recursion F(40): context deadline exceeded",
			is:          context.DeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("expected %q, got %q", tt.expectedMsg, tt.err.Error())
			}
			if tt.is != nil && !errors.Is(tt.err, tt.is) {
				t.Errorf("expected errors.Is(%v)", tt.is)
			}
		})
	}

	if NewCalculationError("x", 1, nil) != nil {
		t.Error("NewCalculationError(nil cause) should return nil")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()
	cause := errors.New("address in use")
	err := NewServerError("listen failed", cause)
	if err.Error() != "listen failed: address in use" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected ServerError to unwrap to its cause")
	}
	if NewServerError("shutdown", nil).Error() != "shutdown" {
		t.Error("expected bare message without cause")
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "ctx") != nil {
		t.Error("WrapError(nil) should return nil")
	}
	err := WrapError(errDomain, "reading n=%d", -1)
	if err.Error() != "reading n=-1: "+errDomain.Error() {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, errDomain) {
		t.Error("wrapped error should match its cause")
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	plain := NewValidationError("n", "must be an integer", "abc")
	if plain.Error() != "validation error for 'n': must be an integer" {
		t.Errorf("unexpected message %q", plain.Error())
	}
	if (ValidationError{Message: "empty"}).Error() != "validation error: empty" {
		t.Error("unexpected message without field")
	}

	wrapped := WrapValidationError("n", -1, errDomain)
	if !errors.Is(wrapped, errDomain) {
		t.Error("wrapped validation error should match the domain error")
	}
	if !IsValidationError(fmt.Errorf("outer: %w", wrapped)) {
		t.Error("IsValidationError should see through wrapping")
	}
	if WrapValidationError("n", 0, nil) != nil {
		t.Error("WrapValidationError(nil) should return nil")
	}
}

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{context.DeadlineExceeded, ExitErrorTimeout},
		{NewCalculationError("Naive Recursion", 60, context.DeadlineExceeded), ExitErrorTimeout},
		{context.Canceled, ExitErrorCanceled},
		{NewConfigError("bad flag"), ExitErrorConfig},
		{WrapValidationError("n", -1, errDomain), ExitErrorInput},
		{errors.New("boom"), ExitErrorGeneric},
	}
	for _, tt := range tests {
		if got := ExitCodeFor(tt.err); got != tt.want {
			t.Errorf("ExitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	if !IsContextError(fmt.Errorf("wrapped: %w", context.Canceled)) {
		t.Error("expected wrapped context.Canceled to be a context error")
	}
	if IsContextError(errDomain) {
		t.Error("domain error is not a context error")
	}
}
