// Package errors provides custom error types for the roadfix client.
//
// The taxonomy mirrors how failures reach the user:
//   - ValidationError: local form problems, shown inline, server never contacted
//   - AuthError: login/registration failures, shown as a banner
//   - APIError: any non-2xx response from the complaint service
//   - MutationError: status/assignment/report failures, shown as a notification
//   - SessionExpiredError: the stored token was rejected mid-session
//
// None of these are fatal. Callers log them and keep the UI interactive.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ValidationError indicates that local input failed a precondition.
//
// Returned when:
//   - A required field is empty (email, description, location, ...)
//   - A value is malformed (email format, password too short)
//   - The report form has no photo attached
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// AuthKind distinguishes why authentication failed.
type AuthKind int

const (
	// AuthRejected covers any other server refusal (bad request, conflict).
	AuthRejected AuthKind = iota
	// AuthUnauthorized means the credentials were wrong (HTTP 401).
	AuthUnauthorized
	// AuthRateLimited means too many attempts (HTTP 429).
	AuthRateLimited
	// AuthServerFault means the server failed (HTTP 5xx).
	AuthServerFault
	// AuthNetwork means the server could not be reached at all.
	AuthNetwork
)

// AuthError indicates that login or registration failed.
//
// Recovery strategy: show Banner() and let the user retry
type AuthError struct {
	Kind    AuthKind
	Message string // server supplied text, may be empty
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Banner(), e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Banner())
}

// Unwrap returns the wrapped error for error chain inspection
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Banner returns the user-facing message for the login screen.
func (e *AuthError) Banner() string {
	switch e.Kind {
	case AuthUnauthorized:
		return "Invalid email or password. Please try again."
	case AuthRateLimited:
		return "Too many login attempts. Please try again later."
	case AuthServerFault:
		return "Server error. Please try again later."
	case AuthNetwork:
		return "Network error. Please check your internet connection."
	}
	if e.Message != "" {
		return e.Message
	}
	return "Login failed. Please try again."
}

// NewAuthError classifies err into an AuthError.
//
// APIError statuses map to kinds. A DecodeError means the server answered
// with something unreadable and becomes AuthServerFault; anything else is a
// transport failure and becomes AuthNetwork.
func NewAuthError(err error) *AuthError {
	var decodeErr *DecodeError
	if stderrors.As(err, &decodeErr) {
		return &AuthError{Kind: AuthServerFault, Err: err}
	}
	var apiErr *APIError
	if !stderrors.As(err, &apiErr) {
		return &AuthError{Kind: AuthNetwork, Err: err}
	}
	kind := AuthRejected
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		kind = AuthUnauthorized
	case apiErr.Status == http.StatusTooManyRequests:
		kind = AuthRateLimited
	case apiErr.Status >= http.StatusInternalServerError:
		kind = AuthServerFault
	}
	return &AuthError{Kind: kind, Message: apiErr.Message, Err: err}
}

// APIError is a non-2xx response from the complaint service.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // "error" field of the response body, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.Path, e.Status)
}

// Unauthorized reports whether the server rejected the credential.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// DecodeError is a 2xx response whose body could not be decoded.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying decoder error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MutationError wraps a failed status update, assignment or submission.
//
// Local state is never touched before the server confirms, so a
// MutationError needs no rollback.
type MutationError struct {
	Op  string // "update status", "assign", "submit report"
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error for error chain inspection
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError creates a new mutation error with context
func NewMutationError(op string, err error) *MutationError {
	return &MutationError{Op: op, Err: err}
}

// SessionExpiredError indicates that the server no longer accepts the token.
//
// Returned when any authenticated fetch answers 401.
//
// Recovery strategy: log out and route to the login screen
type SessionExpiredError struct {
	Message string
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s", e.Message)
}

// NewSessionExpiredError creates a new session expired error with context
func NewSessionExpiredError(msg string) *SessionExpiredError {
	return &SessionExpiredError{Message: msg}
}

// IsValidation checks if the error chain contains a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return stderrors.As(err, &target)
}

// IsSessionExpired checks if the error chain contains a SessionExpiredError
func IsSessionExpired(err error) bool {
	var target *SessionExpiredError
	return stderrors.As(err, &target)
}

// IsUnauthorized checks if the error chain contains a 401 APIError
func IsUnauthorized(err error) bool {
	var target *APIError
	return stderrors.As(err, &target) && target.Unauthorized()
}
