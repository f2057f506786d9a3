package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("photo", "Please upload a photo of the damage")
	expected := "photo: Please upload a photo of the damage"

	if err.Error() != expected {
		t.Errorf("expected %q but got %q", expected, err.Error())
	}

	if !IsValidation(fmt.Errorf("wrapped: %w", err)) {
		t.Error("expected IsValidation to see through wrapping")
	}
}

func TestNewAuthError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     AuthKind
		expected string
	}{
		{
			name:     "unauthorized",
			err:      &APIError{Status: http.StatusUnauthorized},
			kind:     AuthUnauthorized,
			expected: "Invalid email or password. Please try again.",
		},
		{
			name:     "rate limited",
			err:      &APIError{Status: http.StatusTooManyRequests},
			kind:     AuthRateLimited,
			expected: "Too many login attempts. Please try again later.",
		},
		{
			name:     "server fault",
			err:      &APIError{Status: http.StatusInternalServerError},
			kind:     AuthServerFault,
			expected: "Server error. Please try again later.",
		},
		{
			name:     "network",
			err:      fmt.Errorf("dial tcp: connection refused"),
			kind:     AuthNetwork,
			expected: "Network error. Please check your internet connection.",
		},
		{
			name:     "undecodable success body",
			err:      &DecodeError{Method: "POST", Path: "/api/auth/login", Err: fmt.Errorf("invalid character '<'")},
			kind:     AuthServerFault,
			expected: "Server error. Please try again later.",
		},
		{
			name:     "rejected with server text",
			err:      &APIError{Status: http.StatusConflict, Message: "Email already registered"},
			kind:     AuthRejected,
			expected: "Email already registered",
		},
		{
			name:     "rejected without text",
			err:      &APIError{Status: http.StatusBadRequest},
			kind:     AuthRejected,
			expected: "Login failed. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authErr := NewAuthError(tt.err)
			if authErr.Kind != tt.kind {
				t.Errorf("expected kind %d but got %d", tt.kind, authErr.Kind)
			}
			if authErr.Banner() != tt.expected {
				t.Errorf("expected banner %q but got %q", tt.expected, authErr.Banner())
			}
		})
	}
}

func TestMutationError(t *testing.T) {
	baseErr := &APIError{Method: "PUT", Path: "/api/complaints/7", Status: 500}
	err := NewMutationError("update status", baseErr)

	if err.Op != "update status" {
		t.Errorf("expected op 'update status' but got %q", err.Op)
	}

	if err.Unwrap() != baseErr {
		t.Error("expected wrapped error to be preserved")
	}
}

func TestIsSessionExpired(t *testing.T) {
	if !IsSessionExpired(fmt.Errorf("fetch: %w", NewSessionExpiredError("token rejected"))) {
		t.Error("expected IsSessionExpired to return true for wrapped SessionExpiredError")
	}

	if IsSessionExpired(NewValidationError("email", "Email is required")) {
		t.Error("expected IsSessionExpired to return false for ValidationError")
	}
}

func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(fmt.Errorf("get: %w", &APIError{Status: 401})) {
		t.Error("expected 401 to be unauthorized")
	}
	if IsUnauthorized(&APIError{Status: 403}) {
		t.Error("expected 403 not to be unauthorized")
	}
}
