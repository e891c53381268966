package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of application failure. Handlers map codes to HTTP
// statuses; services attach enough context to render a precise message.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInvalidDateRange  Code = "INVALID_DATE_RANGE"
	CodeInvalidQuotaValue Code = "INVALID_QUOTA_VALUE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeForbidden         Code = "FORBIDDEN"
	CodeQuotaExceeded     Code = "QUOTA_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// AppError is the typed failure returned by services.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New builds an AppError with a formatted message.
func New(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an AppError keeping the underlying cause for errors.Is/As chains.
func Wrap(code Code, err error, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the failure code from err, or CodeInternal for plain errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a failure code to the HTTP status handlers respond with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeInvalidDateRange, CodeInvalidQuotaValue:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidTransition, CodeQuotaExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
