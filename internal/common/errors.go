package common

import (
	"errors"
	"net/http"
)

// Error codes shared by every handler.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeInternal     = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// AsAppError returns the AppError in err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

func ErrForbidden() *AppError {
	return NewAppError(CodeForbidden, "Admin access required", http.StatusForbidden, nil)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, nil)
}

func ErrValidation(message string) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest, nil)
}

// ErrUpstream hides err from callers; it is kept for logging only.
func ErrUpstream(message string, err error) *AppError {
	return NewAppError(CodeUpstream, message, http.StatusBadGateway, err)
}

// ErrInternal hides err from callers; it is kept for logging only.
func ErrInternal(message string, err error) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError, err)
}
