// Package errors classifies failures so the HTTP layer can pick a status
// code and a log level in one place.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType is the category of an application error.
type ErrorType string

const (
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeUnauthorized     ErrorType = "unauthorized"
	ErrorTypeForbidden        ErrorType = "forbidden"
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	// ErrorTypeUnavailable marks data that exists but is not ready yet,
	// e.g. queries against an index that is still building.
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeInternal    ErrorType = "internal"
)

// AppError carries a type, a client-facing message and an optional cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, message string, cause error) error {
	return &AppError{Type: t, Message: message, Err: cause}
}

func NotFoundf(format string, args ...any) error {
	return newError(ErrorTypeNotFound, fmt.Sprintf(format, args...), nil)
}

func WrapNotFound(message string, err error) error {
	return newError(ErrorTypeNotFound, message, err)
}

func Validation(message string) error {
	return newError(ErrorTypeValidation, message, nil)
}

func Validationf(format string, args ...any) error {
	return newError(ErrorTypeValidation, fmt.Sprintf(format, args...), nil)
}

func WrapValidation(message string, err error) error {
	return newError(ErrorTypeValidation, message, err)
}

// InvalidKey reports a map key that failed to parse at the given level.
func InvalidKey(level string, err error) error {
	return newError(ErrorTypeValidation, "invalid "+level+" key", err)
}

func Unauthorized(message string) error {
	return newError(ErrorTypeUnauthorized, message, nil)
}

func Forbidden(message string) error {
	return newError(ErrorTypeForbidden, message, nil)
}

func MethodNotAllowed(method string) error {
	return newError(ErrorTypeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method), nil)
}

func Unavailable(message string) error {
	return newError(ErrorTypeUnavailable, message, nil)
}

func WrapInternal(message string, err error) error {
	return newError(ErrorTypeInternal, message, err)
}

// GetType returns the type of the outermost AppError in err's chain, or
// ErrorTypeInternal for unclassified errors.
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
