package core

// ErrorCategory classifies an error for logging and recovery decisions
type ErrorCategory int

const (
	ErrCategoryNone    ErrorCategory = iota // No error
	ErrCategoryLocator                      // Locator has no variant for the platform or cannot be parsed
	ErrCategorySession                      // No session could be resolved for an object
	ErrCategoryBinding                      // Object cannot be bound deterministically
	ErrCategoryTimeout                      // A wait condition was not met in time
	ErrCategoryBackend                      // The automation backend reported a failure
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryLocator:
		return "locator"
	case ErrCategorySession:
		return "session"
	case ErrCategoryBinding:
		return "binding"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// IsRecoverable reports whether callers may choose to swallow errors of this
// category. Only timeouts qualify; everything else is fatal to the operation.
func (c ErrorCategory) IsRecoverable() bool {
	return c == ErrCategoryTimeout
}
