// Package errors provides structured error handling for the planner service
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidProfile   ErrorCode = "INVALID_PROFILE"
	CodeSlotNotFound     ErrorCode = "SLOT_NOT_FOUND"

	// Server errors (5xx)
	CodeInternal            ErrorCode = "INTERNAL_ERROR"
	CodeGenerationFailed    ErrorCode = "GENERATION_FAILED"
	CodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	CodeCacheError          ErrorCode = "CACHE_ERROR"

	// Soft conditions, logged and attached to plans but never returned
	CodeNoCandidatesFound ErrorCode = "NO_CANDIDATES_FOUND"
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

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeInvalidProfile:
		return http.StatusBadRequest
	case CodeNotFound, CodeSlotNotFound:
		return http.StatusNotFound
	case CodeProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
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

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewInvalidProfileError reports a profile that cannot drive nutrition math.
func NewInvalidProfileError(cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return NewAppError(CodeInvalidProfile, "Invalid profile", details).WithCause(cause)
}

// NewGenerationFailedError reports an aborted plan generation. Callers
// show a retry prompt for this code.
func NewGenerationFailedError(userID string, cause error) *AppError {
	return NewAppError(
		CodeGenerationFailed,
		"Meal plan generation failed",
		fmt.Sprintf("Could not generate a plan for user %s", userID),
	).WithCause(cause).WithMetadata("user_id", userID)
}

// NewProviderUnavailableError reports a food provider that did not answer.
func NewProviderUnavailableError(provider string, cause error) *AppError {
	return NewAppError(
		CodeProviderUnavailable,
		"Food provider unavailable",
		fmt.Sprintf("Failed to query %s", provider),
	).WithCause(cause).WithMetadata("provider", provider)
}

// NewNoCandidatesFoundError describes a meal category left unfilled.
func NewNoCandidatesFoundError(slot, term string) *AppError {
	return NewAppError(
		CodeNoCandidatesFound,
		"No candidate foods found",
		fmt.Sprintf("No usable food for %q in %s", term, slot),
	).WithMetadata("slot", slot).WithMetadata("term", term)
}

// NewSlotNotFoundError reports a meal slot missing from a plan.
func NewSlotNotFoundError(slot string) *AppError {
	return NewAppError(
		CodeSlotNotFound,
		"Meal slot not found",
		fmt.Sprintf("Plan has no %s meal", slot),
	).WithMetadata("slot", slot)
}

// NewCacheError wraps a plan cache failure.
func NewCacheError(operation string, cause error) *AppError {
	return NewAppError(
		CodeCacheError,
		"Plan cache operation failed",
		fmt.Sprintf("Failed to %s", operation),
	).WithCause(cause)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

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

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
