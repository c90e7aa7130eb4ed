package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// --- Pipeline Error Constructors ---

// UnsupportedFormat creates a new AppError for an upload with a disallowed extension.
func UnsupportedFormat(extension string, allowed []string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedFormat, Message: fmt.Sprintf("Unsupported file extension %q.", extension),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"extension": extension, "allowed": allowed},
	}
}

// ConfigNotFound creates a new AppError for a missing or unreadable diarizer configuration.
func ConfigNotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeConfigNotFound, Message: fmt.Sprintf("Diarization config not found at %s", path),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"path": path},
	}
}

// ModelLoadFailed creates a new AppError for a model that failed to load.
// It is retryable: failed loads are never cached, so the next call retries
// the load after the underlying problem is fixed.
func ModelLoadFailed(kind, name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeModelLoadFailed, Message: fmt.Sprintf("Failed to load %s model %q.", kind, name),
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
		Details: map[string]any{"kind": kind, "name": name},
	}
}

// InferenceFailed creates a new AppError for a diarization or transcription
// call that failed. The loaded model stays cached; only the originating job
// fails.
func InferenceFailed(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeInferenceFailed, Message: fmt.Sprintf("The %s call failed.", operation),
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
		Details: map[string]any{"operation": operation},
	}
}
