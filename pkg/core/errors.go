package core

import (
	"errors"
	"fmt"
)

// ExecutionError represents a structured error with category and details
type ExecutionError struct {
	Category ErrorCategory
	Code     string                 // Machine-readable code: locator, unexpected_text, etc.
	Message  string                 // Human-readable message
	Details  map[string]interface{} // Additional context: expected, actual, selector
	Cause    error                  // Underlying error
}

// Error implements the error interface
func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// Is matches any ExecutionError carrying the same code, so decorated copies
// of a predefined error still satisfy errors.Is against the original.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// WithCause returns a copy of the error with the given cause
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  e.Details,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Details:  e.Details,
		Cause:    e.Cause,
	}
}

// WithMessagef is WithMessage with formatting.
func (e *ExecutionError) WithMessagef(format string, args ...interface{}) *ExecutionError {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// WithDetails returns a copy of the error with additional details
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	merged := make(map[string]interface{})
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &ExecutionError{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Details:  merged,
		Cause:    e.Cause,
	}
}

// Predefined errors
var (
	// Locator errors
	ErrLocator = &ExecutionError{
		Category: ErrCategoryLocator,
		Code:     "invalid_locator",
		Message:  "cannot extract locator for current platform",
	}

	// Session errors
	ErrSessionResolution = &ExecutionError{
		Category: ErrCategorySession,
		Code:     "session_resolution",
		Message:  "cannot resolve session",
	}
	ErrNotBound = &ExecutionError{
		Category: ErrCategorySession,
		Code:     "not_bound",
		Message:  "object is not bound to any session",
	}

	// Binding errors
	ErrAmbiguousBinding = &ExecutionError{
		Category: ErrCategoryBinding,
		Code:     "ambiguous_binding",
		Message:  "cannot choose a session or parent deterministically",
	}

	// Timeout errors
	ErrTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "timeout",
		Message:  "operation timed out",
	}
	ErrUnexpectedElementsCount = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "unexpected_elements_count",
		Message:  "unexpected elements count",
	}
	ErrUnexpectedText = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "unexpected_text",
		Message:  "unexpected text",
	}
	ErrUnexpectedValue = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "unexpected_value",
		Message:  "unexpected value",
	}
	ErrElementNotVisible = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "element_not_visible",
		Message:  "element not visible",
	}
	ErrElementNotHidden = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "element_not_hidden",
		Message:  "element not hidden",
	}

	// Backend errors
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryBackend,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrBackend = &ExecutionError{
		Category: ErrCategoryBackend,
		Code:     "backend",
		Message:  "backend call failed",
	}
)

// NewExecutionError creates a new ExecutionError with the given parameters
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{
		Category: category,
		Code:     code,
		Message:  message,
	}
}

// CategoryOf returns the category of the first ExecutionError in err's chain.
func CategoryOf(err error) ErrorCategory {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return ErrCategoryNone
}

// IsTimeout reports whether err is a timeout-class error.
func IsTimeout(err error) bool {
	return err != nil && CategoryOf(err).IsRecoverable()
}
