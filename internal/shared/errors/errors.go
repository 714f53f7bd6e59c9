// Package errors provides application-level error types and utilities.
// It defines the error taxonomy shared across the serial lifecycle engine:
// input, codec, signature, integrity, policy, not-found, transient I/O and
// lock contention errors.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input_error"
	ErrorTypeCodec       ErrorType = "codec_error"
	ErrorTypeSignature   ErrorType = "signature_error"
	ErrorTypeIntegrity   ErrorType = "integrity_error"
	ErrorTypePolicy      ErrorType = "policy_violation"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeTransientIO ErrorType = "transient_io"
	ErrorTypeLock        ErrorType = "lock_contention"
	ErrorTypeInternal    ErrorType = "internal_error"
)

// AppError represents an application error with additional context
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause attaches an underlying error to the AppError.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newError(errType ErrorType, message string, details ...string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    errType,
		Message: message,
		Details: detail,
	}
}

// NewInputError creates a new input validation error
func NewInputError(message string, details ...string) *AppError {
	return newError(ErrorTypeInput, message, details...)
}

// NewCodecError creates an error for corrupt or foreign serial codes
func NewCodecError(message string, details ...string) *AppError {
	return newError(ErrorTypeCodec, message, details...)
}

// NewSignatureError creates an error for forged or wrong-key serial codes
func NewSignatureError(message string, details ...string) *AppError {
	return newError(ErrorTypeSignature, message, details...)
}

// NewIntegrityError creates an error for tampered stored entities
func NewIntegrityError(message string, details ...string) *AppError {
	return newError(ErrorTypeIntegrity, message, details...)
}

// NewPolicyViolation creates an error for expired/inactive/cap-exceeded serials
func NewPolicyViolation(message string, details ...string) *AppError {
	return newError(ErrorTypePolicy, message, details...)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, message, details...)
}

// NewTransientIOError creates a retryable I/O error
func NewTransientIOError(message string, details ...string) *AppError {
	return newError(ErrorTypeTransientIO, message, details...)
}

// NewLockContentionError creates an error for failed lock acquisition.
// Callers on the validation path treat this as a policy violation and fail closed.
func NewLockContentionError(message string, details ...string) *AppError {
	return newError(ErrorTypeLock, message, details...)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, message, details...)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func isType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsPolicyViolation checks if the error is a policy violation
func IsPolicyViolation(err error) bool {
	return isType(err, ErrorTypePolicy)
}

// IsIntegrityError checks if the error is an integrity error
func IsIntegrityError(err error) bool {
	return isType(err, ErrorTypeIntegrity)
}

// IsCodecError checks if the error is a codec error
func IsCodecError(err error) bool {
	return isType(err, ErrorTypeCodec)
}

// IsSignatureError checks if the error is a signature error
func IsSignatureError(err error) bool {
	return isType(err, ErrorTypeSignature)
}

// IsTransientIOError reports whether the error is retryable.
// Only this error type is ever auto-retried.
func IsTransientIOError(err error) bool {
	return isType(err, ErrorTypeTransientIO)
}

// IsLockContention checks if the error is a lock contention error
func IsLockContention(err error) bool {
	return isType(err, ErrorTypeLock)
}
