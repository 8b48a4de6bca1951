// Package apperrors provides structured application errors with HTTP status mapping.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
var (
	ErrValidation = errors.New("validation error")
	ErrSubmission = errors.New("submission error")
	ErrJobFailed  = errors.New("job failed")
	ErrRelay      = errors.New("relay error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrCancelled  = errors.New("cancelled")
	ErrInternal   = errors.New("internal error")
)

// Error provides structured error with context.
type Error struct {
	Sentinel error  // Wrapped sentinel for errors.Is() classification
	Message  string // Human-readable message
	Field    string // For validation errors (e.g., "query", "timeRange")
	Resource string // For not found/conflict (e.g., "session")
	Stage    string // For relay errors ("download" or "upload")
	Cause    error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() classification.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Validation creates a validation error for a specific field.
func Validation(field, message string) error {
	return &Error{
		Sentinel: ErrValidation,
		Message:  message,
		Field:    field,
	}
}

// Submission creates a submission error wrapping the remote failure.
func Submission(cause error) error {
	return &Error{
		Sentinel: ErrSubmission,
		Message:  fmt.Sprintf("job submission failed: %v", cause),
		Cause:    cause,
	}
}

// JobFailed creates an error for a job the backend reported as failed.
func JobFailed(reason string) error {
	if reason == "" {
		reason = "analysis job failed"
	}
	return &Error{
		Sentinel: ErrJobFailed,
		Message:  reason,
	}
}

// Relay creates a relay error for a specific pipeline stage.
func Relay(stage string, cause error) error {
	return &Error{
		Sentinel: ErrRelay,
		Message:  fmt.Sprintf("relay %s failed: %v", stage, cause),
		Stage:    stage,
		Cause:    cause,
	}
}

// RelayStage extracts the failing stage name from a relay error, if any.
func RelayStage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// NotFound creates a not found error for a resource.
func NotFound(resource, id string) error {
	return &Error{
		Sentinel: ErrNotFound,
		Message:  fmt.Sprintf("%s %s not found", resource, id),
		Resource: resource,
	}
}

// Conflict creates a conflict error for a resource.
func Conflict(resource, reason string) error {
	return &Error{
		Sentinel: ErrConflict,
		Message:  reason,
		Resource: resource,
	}
}

// Cancelled creates an error for an externally cancelled session.
func Cancelled(resource string) error {
	return &Error{
		Sentinel: ErrCancelled,
		Message:  fmt.Sprintf("%s cancelled", resource),
		Resource: resource,
	}
}

// Internal creates an internal error wrapping an underlying cause.
func Internal(op string, cause error) error {
	return &Error{
		Sentinel: ErrInternal,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Cause:    cause,
	}
}
