package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned when a write collides with a unique constraint,
	// e.g. registering an email address that is already taken.
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidToken is returned when an activation or password reset token
	// does not exist, is expired, or has already been used.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrNicknameTaken is returned when a profile update requests a nickname
	// that belongs to another user.
	ErrNicknameTaken = errors.New("nickname is already taken")

	// ErrForbidden is returned when the authenticated user lacks the role
	// required for the operation.
	ErrForbidden = errors.New("insufficient permissions")
)

// FieldError describes a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidationError carries every rule violation found in a candidate entry.
// Violations are accumulated, never truncated to the first failure, so a
// single response tells the client everything that is wrong.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Details returns the individual violations for the error response body.
func (e *ValidationError) Details() []string {
	details := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		details[i] = f.String()
	}
	return details
}

// NewValidationError builds a ValidationError from accumulated field errors.
func NewValidationError(fields []FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ErrorResponse is the wire shape for every error the API returns:
// a machine-readable code, a human-readable message and, for validation
// failures, the full list of field violations.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// NewErrorResponse is a small helper for handlers.
func NewErrorResponse(code, format string, args ...any) ErrorResponse {
	return ErrorResponse{Code: code, Message: fmt.Sprintf(format, args...)}
}
