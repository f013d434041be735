package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for handling decisions.
type ErrorCategory string

const (
	ErrCatValidation ErrorCategory = "validation" // Invalid input
	ErrCatNotFound   ErrorCategory = "not_found"  // Resource not found
	ErrCatConflict   ErrorCategory = "conflict"   // Concurrent modification
	ErrCatState      ErrorCategory = "state"      // Illegal state transition
	ErrCatIO         ErrorCategory = "io"         // Filesystem/storage failure
	ErrCatInternal   ErrorCategory = "internal"   // Unexpected internal error
)

// DomainError represents a structured error from the domain layer.
type DomainError struct {
	Category  ErrorCategory
	Code      string
	Message   string
	Retryable bool
	Cause     error
	Details   map[string]interface{}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s (%v)", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches a target.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Category == t.Category && e.Code == t.Code
}

// WithCause wraps an underlying error.
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds contextual information.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ErrValidation creates a validation error.
func ErrValidation(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatValidation,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrNotFound creates a not found error. The code is derived from the
// resource name, e.g. "workflow" yields WORKFLOW_NOT_FOUND.
func ErrNotFound(resource, id string) *DomainError {
	return &DomainError{
		Category:  ErrCatNotFound,
		Code:      strings.ToUpper(strings.ReplaceAll(resource, " ", "_")) + "_NOT_FOUND",
		Message:   fmt.Sprintf("%s not found: %s", resource, id),
		Retryable: false,
	}
}

// ErrConflict creates a conflict error.
func ErrConflict(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatConflict,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrState creates a state error.
func ErrState(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatState,
		Code:      code,
		Message:   message,
		Retryable: false,
	}
}

// ErrIO creates a filesystem/storage error.
func ErrIO(code, message string) *DomainError {
	return &DomainError{
		Category:  ErrCatIO,
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// ErrInternal creates an internal error.
func ErrInternal(message string) *DomainError {
	return &DomainError{
		Category:  ErrCatInternal,
		Code:      "INTERNAL",
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Retryable
	}
	return false
}

// GetCategory extracts the error category.
func GetCategory(err error) ErrorCategory {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr.Category
	}
	return ErrCatInternal
}

// IsCategory checks if an error belongs to a category.
func IsCategory(err error, cat ErrorCategory) bool {
	return GetCategory(err) == cat
}

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return IsCategory(err, ErrCatNotFound)
}

// Predefined error codes
const (
	CodeWorkflowNotFound = "WORKFLOW_NOT_FOUND"
	CodeStepNotFound     = "STEP_NOT_FOUND"
	CodeRunNotFound      = "RUN_NOT_FOUND"
	CodeAgentNotFound    = "AGENT_NOT_FOUND"

	// Validation error codes
	CodeInvalidWorkflow = "INVALID_WORKFLOW"
	CodeInvalidTrigger  = "INVALID_TRIGGER"
	CodeInvalidAction   = "INVALID_ACTION"
	CodeInvalidNodeType = "INVALID_NODE_TYPE"
	CodeInvalidStatus   = "INVALID_STATUS"
	CodeEmptyName       = "EMPTY_NAME"
	CodeDuplicateStep   = "DUPLICATE_STEP"
	CodeDanglingEdge    = "DANGLING_EDGE"
	CodeBadEntryPoint   = "BAD_ENTRY_POINT"
	CodeInvalidExport   = "INVALID_EXPORT_KIND"
	CodeInvalidCatalog  = "INVALID_AGENT_CATALOG"

	// Conflict error codes
	CodeWorkflowExists = "WORKFLOW_EXISTS"

	// State error codes
	CodeRunNotRunning = "RUN_NOT_RUNNING"
	CodeRunTerminal   = "RUN_TERMINAL"

	// Storage error codes
	CodeStoreCorrupt = "WORKFLOW_STORE_CORRUPT"
	CodeStoreIO      = "WORKFLOW_STORE_IO"
	CodeExportIO     = "EXPORT_IO"
	CodeHistoryIO    = "HISTORY_IO"
)
