package errors

import (
	"errors"
	"fmt"
)

// Domain-specific error types
var (
	// ErrInvalidSubmission indicates the submitted body was missing or unparseable
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrUploadRejected indicates an uploaded file exceeded the size cap or had a disallowed type
	ErrUploadRejected = errors.New("upload rejected")

	// ErrUpstreamUnavailable indicates the spreadsheet read or append failed
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotificationFailed indicates the mail transport refused or failed a send
	ErrNotificationFailed = errors.New("notification failed")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal server error")
)

// Error codes for API responses and logs
const (
	CodeInvalidSubmission   = "INVALID_SUBMISSION"
	CodeUploadRejected      = "UPLOAD_REJECTED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeNotificationFailed  = "NOTIFICATION_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// AppError represents an application error with context
type AppError struct {
	Err     error
	Message string
	Code    string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError
func NewAppError(err error, message string, code string) *AppError {
	return &AppError{
		Err:     err,
		Message: message,
		Code:    code,
	}
}

// InvalidSubmission returns an AppError wrapping ErrInvalidSubmission
func InvalidSubmission(format string, args ...any) *AppError {
	return NewAppError(ErrInvalidSubmission, fmt.Sprintf(format, args...), CodeInvalidSubmission)
}

// UploadRejected returns an AppError wrapping ErrUploadRejected
func UploadRejected(format string, args ...any) *AppError {
	return NewAppError(ErrUploadRejected, fmt.Sprintf(format, args...), CodeUploadRejected)
}

// Upstream wraps err so that it matches ErrUpstreamUnavailable while keeping the cause
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}

// Notification wraps err so that it matches ErrNotificationFailed while keeping the cause
func Notification(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotificationFailed, err)
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsInvalidSubmission checks if the error is an invalid submission error
func IsInvalidSubmission(err error) bool {
	return errors.Is(err, ErrInvalidSubmission)
}

// IsUploadRejected checks if the error is an upload rejection
func IsUploadRejected(err error) bool {
	return errors.Is(err, ErrUploadRejected)
}

// IsUpstreamUnavailable checks if the error came from the spreadsheet store
func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// IsNotificationFailed checks if the error came from the mail transport
func IsNotificationFailed(err error) bool {
	return errors.Is(err, ErrNotificationFailed)
}

// GetErrorCode returns the appropriate error code for an error
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}

	switch {
	case IsInvalidSubmission(err):
		return CodeInvalidSubmission
	case IsUploadRejected(err):
		return CodeUploadRejected
	case IsUpstreamUnavailable(err):
		return CodeUpstreamUnavailable
	case IsNotificationFailed(err):
		return CodeNotificationFailed
	default:
		return CodeInternalError
	}
}
