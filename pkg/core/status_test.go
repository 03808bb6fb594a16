package core

import "testing"

func TestErrorCategory_String(t *testing.T) {
	tests := []struct {
		category ErrorCategory
		expected string
	}{
		{ErrCategoryNone, "none"},
		{ErrCategoryLocator, "locator"},
		{ErrCategorySession, "session"},
		{ErrCategoryBinding, "binding"},
		{ErrCategoryTimeout, "timeout"},
		{ErrCategoryBackend, "backend"},
		{ErrorCategory(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.category.String(); got != tt.expected {
			t.Errorf("ErrorCategory(%d).String() = %q, want %q", tt.category, got, tt.expected)
		}
	}
}

func TestErrorCategory_IsRecoverable(t *testing.T) {
	recoverable := map[ErrorCategory]bool{
		ErrCategoryTimeout: true,
	}

	for _, c := range []ErrorCategory{
		ErrCategoryNone, ErrCategoryLocator, ErrCategorySession,
		ErrCategoryBinding, ErrCategoryTimeout, ErrCategoryBackend,
	} {
		if got := c.IsRecoverable(); got != recoverable[c] {
			t.Errorf("%s.IsRecoverable() = %v, want %v", c, got, recoverable[c])
		}
	}
}
