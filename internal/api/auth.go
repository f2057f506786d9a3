package api

import (
	"context"
	"net/http"

	"roadfix/internal/complaint"
	apperrors "roadfix/internal/errors"
)

// User is the server profile returned on login and registration.
type User struct {
	ID        complaint.ID `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Role      string       `json:"role"`
	CreatedAt string       `json:"createdAt,omitempty"`
}

// AuthResult is a successful login or registration.
type AuthResult struct {
	Token string
	User  User
}

// Registration is the body of POST /api/auth/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// authResponse is the envelope both auth endpoints answer with.
type authResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
	Error   string `json:"error"`
}

// Authenticate exchanges credentials for a bearer token.
//
// Endpoint: POST /api/auth/login {email, password}
//
// Returns:
//   - *AuthResult on {"success": true}
//   - *errors.APIError on a non-2xx status or {"success": false}
//   - a transport error when the server is unreachable
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return c.auth(ctx, "/api/auth/login", body)
}

// Register creates an account and logs it in.
//
// Endpoint: POST /api/auth/register
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResult, error) {
	return c.auth(ctx, "/api/auth/register", reg)
}

func (c *Client) auth(ctx context.Context, path string, body interface{}) (*AuthResult, error) {
	var resp authResponse
	if err := c.sendJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, &apperrors.APIError{
			Method:  http.MethodPost,
			Path:    path,
			Status:  http.StatusOK,
			Message: resp.Error,
		}
	}
	return &AuthResult{Token: resp.Token, User: resp.User}, nil
}
