package models

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the typed errors below
var (
	ErrValidation       = errors.New("validation error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrNotFound         = errors.New("record not found")
)

// Machine-readable error kinds reported to callers of the pipeline
const (
	KindValidation       = "VALIDATION_ERROR"
	KindInsufficientData = "INSUFFICIENT_DATA"
	KindNotFound         = "NOT_FOUND"
	KindBacktest         = "BACKTEST_ERROR"
)

// ValidationError represents malformed or inconsistent input
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Cause }

// InsufficientDataError represents a series shorter than the configured minimum
type InsufficientDataError struct {
	Rows    int
	Minimum int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %d rows, need at least %d", e.Rows, e.Minimum)
}

func (e *InsufficientDataError) Is(target error) bool { return target == ErrInsufficientData }

// NotFoundError represents a missing data file or model artifact
type NotFoundError struct {
	Resource string
	Path     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewValidationError creates a new validation error
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// WrapValidationError creates a validation error carrying its cause
func WrapValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}

// NewInsufficientDataError creates a new insufficient data error
func NewInsufficientDataError(rows, minimum int) *InsufficientDataError {
	return &InsufficientDataError{Rows: rows, Minimum: minimum}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource, path string) *NotFoundError {
	return &NotFoundError{Resource: resource, Path: path}
}

// ErrorKind maps an error to its machine-readable kind
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindBacktest
	}
}
