package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExecutionError_Error(t *testing.T) {
	err := &ExecutionError{
		Category: ErrCategoryLocator,
		Code:     "test_error",
		Message:  "test message",
	}

	if got := err.Error(); got != "test message" {
		t.Errorf("Error() = %q, want %q", got, "test message")
	}
}

func TestExecutionError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Category: ErrCategoryBackend,
		Code:     "test_error",
		Message:  "test message",
		Cause:    cause,
	}

	got := err.Error()
	if !strings.Contains(got, "test message") {
		t.Errorf("Error() = %q, should contain 'test message'", got)
	}
	if !strings.Contains(got, "underlying error") {
		t.Errorf("Error() = %q, should contain 'underlying error'", got)
	}
}

func TestExecutionError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ExecutionError{
		Message: "wrapper",
		Cause:   cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}
}

func TestExecutionError_WithCause(t *testing.T) {
	original := ErrElementNotFound
	cause := errors.New("custom cause")

	newErr := original.WithCause(cause)

	if newErr.Cause != cause {
		t.Error("WithCause() did not set cause")
	}
	if newErr.Code != original.Code {
		t.Error("WithCause() changed code")
	}
	if original.Cause != nil {
		t.Error("WithCause() modified original error")
	}
}

func TestExecutionError_WithMessage(t *testing.T) {
	original := ErrTimeout
	newErr := original.WithMessagef("waited %d seconds", 3)

	if newErr.Message != "waited 3 seconds" {
		t.Errorf("Message = %q, want 'waited 3 seconds'", newErr.Message)
	}
	if newErr.Code != original.Code {
		t.Error("WithMessage() changed code")
	}
	if original.Message == "waited 3 seconds" {
		t.Error("WithMessage() modified original error")
	}
}

func TestExecutionError_WithDetails(t *testing.T) {
	original := &ExecutionError{
		Code:    "test",
		Message: "test",
		Details: map[string]interface{}{"existing": "value"},
	}

	newErr := original.WithDetails(map[string]interface{}{
		"selector": "css=#button",
		"expected": 3,
	})

	if newErr.Details["selector"] != "css=#button" {
		t.Error("WithDetails() did not add new details")
	}
	if newErr.Details["existing"] != "value" {
		t.Error("WithDetails() did not preserve existing details")
	}
	if _, ok := original.Details["selector"]; ok {
		t.Error("WithDetails() modified original error")
	}
}

func TestExecutionError_IsMatchesCode(t *testing.T) {
	decorated := ErrUnexpectedElementsCount.
		WithMessage("Unexpected elements count").
		WithDetails(map[string]interface{}{"actual": 4})
	wrapped := fmt.Errorf("page check: %w", decorated)

	if !errors.Is(wrapped, ErrUnexpectedElementsCount) {
		t.Error("errors.Is() should match a decorated copy by code")
	}
	if errors.Is(wrapped, ErrUnexpectedText) {
		t.Error("errors.Is() should not match a different code")
	}
}

func TestPredefinedErrors(t *testing.T) {
	tests := []struct {
		err      *ExecutionError
		category ErrorCategory
		code     string
	}{
		{ErrLocator, ErrCategoryLocator, "invalid_locator"},
		{ErrSessionResolution, ErrCategorySession, "session_resolution"},
		{ErrNotBound, ErrCategorySession, "not_bound"},
		{ErrAmbiguousBinding, ErrCategoryBinding, "ambiguous_binding"},
		{ErrTimeout, ErrCategoryTimeout, "timeout"},
		{ErrUnexpectedElementsCount, ErrCategoryTimeout, "unexpected_elements_count"},
		{ErrUnexpectedText, ErrCategoryTimeout, "unexpected_text"},
		{ErrUnexpectedValue, ErrCategoryTimeout, "unexpected_value"},
		{ErrElementNotVisible, ErrCategoryTimeout, "element_not_visible"},
		{ErrElementNotHidden, ErrCategoryTimeout, "element_not_hidden"},
		{ErrElementNotFound, ErrCategoryBackend, "element_not_found"},
		{ErrBackend, ErrCategoryBackend, "backend"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Category != tt.category {
				t.Errorf("Category = %s, want %s", tt.err.Category, tt.category)
			}
			if tt.err.Code != tt.code {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"count", ErrUnexpectedElementsCount.WithMessage("x"), true},
		{"wrapped visibility", fmt.Errorf("ctx: %w", ErrElementNotVisible), true},
		{"locator", ErrLocator, false},
		{"session", ErrSessionResolution, false},
	}

	for _, tt := range tests {
		if got := IsTimeout(tt.err); got != tt.want {
			t.Errorf("%s: IsTimeout() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestExecutionError_ErrorsIs(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrTimeout.WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the cause")
	}
}
