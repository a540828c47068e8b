package domain

import "fmt"

// Error codes for faults that are allowed to surface out of the core.
// Analyzer faults never become errors of this kind; they are downgraded to
// result-level statuses at the analyzer boundary.
const (
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeConfigError   = "CONFIG_ERROR"
	ErrCodeProjectAccess = "PROJECT_ACCESS"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeStorageError  = "STORAGE_ERROR"
)

// DomainError represents a structured error with a code and optional cause
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a DomainError with an arbitrary code
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewConfigError creates a configuration loading error
func NewConfigError(message string, cause error) error {
	return DomainError{Code: ErrCodeConfigError, Message: message, Cause: cause}
}

// NewProjectAccessError creates an error for an unreadable project root
func NewProjectAccessError(path string, cause error) error {
	return DomainError{Code: ErrCodeProjectAccess, Message: fmt.Sprintf("cannot access project root: %s", path), Cause: cause}
}

// NewRenderError creates an error for a renderer that failed to produce output
func NewRenderError(format string, cause error) error {
	return DomainError{Code: ErrCodeRenderFailed, Message: fmt.Sprintf("failed to render %s report", format), Cause: cause}
}
