// Package apperror holds the error taxonomy shared by repositories, services and handlers
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError is returned for malformed or out-of-range input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError is returned when the requested data does not exist
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// InsufficientDataError is returned when a lookback window is too sparse for an assessment
type InsufficientDataError struct {
	Message  string
	Required int
	Actual   int
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// AuthError is returned for missing, invalid or expired credentials
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause
func (e *AuthError) Unwrap() error {
	return e.Err
}

// ForbiddenError is returned when an authenticated user may not use the API
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// ConflictError is returned when a write collides with existing state
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Validation builds a ValidationError
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFoundError
func NotFound(format string, args ...interface{}) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientData builds an InsufficientDataError
func InsufficientData(required int, actual int, format string, args ...interface{}) error {
	return &InsufficientDataError{Message: fmt.Sprintf(format, args...), Required: required, Actual: actual}
}

// Auth builds an AuthError
func Auth(message string, err error) error {
	return &AuthError{Message: message, Err: err}
}

// Conflict builds a ConflictError
func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a ForbiddenError
func Forbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is or wraps a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInsufficientData reports whether err is or wraps an InsufficientDataError
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// IsValidation reports whether err is or wraps a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsAuth reports whether err is or wraps an AuthError
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}
