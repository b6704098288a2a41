// Package errors provides structured error handling for the planner.
// Following enterprise patterns for error management and observability.
package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode represents an error code
type ErrorCode string

// Error codes for the planning core. Solve degradation is deliberately
// absent: a degraded solve still returns a plan with warnings and is never
// surfaced as an error.
const (
	CodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	CodeConfiguration     ErrorCode = "CONFIGURATION_ERROR"
	CodeModelBuild        ErrorCode = "MODEL_BUILD_ERROR"
	CodeSolverUnavailable ErrorCode = "SOLVER_UNAVAILABLE"
	CodeExtraction        ErrorCode = "EXTRACTION_ERROR"
	CodeCatalog           ErrorCode = "CATALOG_ERROR"
	CodeInternal          ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// Predefined error constructors for the planning taxonomy

// NewValidationError creates a request validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Request validation failed", details)
}

// NewConfigurationError creates a fail-fast configuration error, raised
// before model construction when the filtered catalog cannot satisfy the
// request.
func NewConfigurationError(details string) *AppError {
	return NewAppError(CodeConfiguration, "Planning configuration is unsatisfiable", details)
}

// NewModelBuildError creates an error for an internal invariant violated
// while constructing the optimization model. This indicates a defect.
func NewModelBuildError(details string, cause error) *AppError {
	return NewAppError(CodeModelBuild, "Failed to build optimization model", details).WithCause(cause)
}

// NewSolverUnavailableError creates an error for when no solver backend
// could be initialized.
func NewSolverUnavailableError(cause error) *AppError {
	return NewAppError(CodeSolverUnavailable, "No solver backend available", "").WithCause(cause)
}

// NewExtractionError creates an error for a solution that violates plan
// invariants. This indicates a modeling bug.
func NewExtractionError(details string, cause error) *AppError {
	return NewAppError(CodeExtraction, "Solution violates plan invariants", details).WithCause(cause)
}

// NewCatalogError creates an error for a failing dish catalog provider
func NewCatalogError(operation string, cause error) *AppError {
	return NewAppError(
		CodeCatalog,
		"Dish catalog operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}
