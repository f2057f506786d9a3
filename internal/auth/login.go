// Package auth handles login and registration against the complaint
// service.
//
// This package provides:
//   - Form validation with user-facing messages
//   - Credential exchange through the API client
//   - Session creation and remember-me handling
//   - Role-based landing view selection
package auth

import (
	"context"
	"fmt"
	"log"
	"strings"

	"roadfix/internal/api"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/role"
	"roadfix/internal/session"
)

// Credential is a demo account offered on the login screen.
type Credential struct {
	Label    string
	Email    string
	Password string
}

// DemoCredentials are the seeded accounts of a development server.
var DemoCredentials = []Credential{
	{Label: "Admin", Email: "admin@solapur.gov", Password: "admin123"},
	{Label: "Worker", Email: "worker@solapur.gov", Password: "worker123"},
	{Label: "Citizen", Email: "citizen@example.com", Password: "citizen123"},
}

// Authenticator is the part of the API client used here.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*api.AuthResult, error)
	Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error)
}

// Result is a successful login or registration.
type Result struct {
	Session *session.Session
	Landing role.View
	Welcome string
}

// Service ties the API client to the session store.
type Service struct {
	client Authenticator
	store  *session.Store
}

// NewService creates an auth service.
func NewService(client Authenticator, store *session.Store) *Service {
	return &Service{client: client, store: store}
}

// Login validates the form, exchanges credentials and opens a session.
//
// Flow:
//  1. Validate locally; the server is not contacted on failure
//  2. POST /api/auth/login
//  3. Persist token and profile, update remember-me
//  4. Pick the landing view for the role
//
// Returns:
//   - FieldErrors when validation fails
//   - *errors.AuthError when the server refuses or cannot be reached
func (s *Service) Login(ctx context.Context, form LoginForm) (*Result, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return nil, err
	}

	log.Printf("  → Authenticating %s...\n", form.Email)
	res, err := s.client.Authenticate(ctx, form.Email, form.Password)
	if err != nil {
		authErr := apperrors.NewAuthError(err)
		log.Printf("  ✗ Login failed: %v\n", authErr)
		return nil, authErr
	}

	if err := s.store.RememberEmail(form.Email, form.RememberMe); err != nil {
		log.Printf("  ⚠️  Could not update remembered email: %v\n", err)
	}

	return s.open(res, fmt.Sprintf("Welcome, %s!", displayName(res.User)))
}

// Register validates the form, creates the account and opens a session.
//
// An empty role registers a citizen.
func (s *Service) Register(ctx context.Context, form RegisterForm) (*Result, error) {
	form.Email = strings.TrimSpace(form.Email)
	if form.Role == "" {
		form.Role = string(role.KindCitizen)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	log.Printf("  → Registering %s as %s...\n", form.Email, form.Role)
	res, err := s.client.Register(ctx, api.Registration{
		Name:     strings.TrimSpace(form.Name),
		Email:    form.Email,
		Phone:    strings.TrimSpace(form.Phone),
		Address:  strings.TrimSpace(form.Address),
		Role:     form.Role,
		Password: form.Password,
	})
	if err != nil {
		authErr := apperrors.NewAuthError(err)
		log.Printf("  ✗ Registration failed: %v\n", authErr)
		return nil, authErr
	}

	return s.open(res, "Registration successful!")
}

func (s *Service) open(res *api.AuthResult, welcome string) (*Result, error) {
	sess, err := s.store.Login(res.Token, res.User)
	if err != nil && sess == nil {
		return nil, err
	}
	if err != nil {
		log.Printf("  ⚠️  Session will not survive a restart: %v\n", err)
	}

	log.Printf("  ✓ Authenticated as %s\n", sess.Role.Kind())
	return &Result{
		Session: sess,
		Landing: Route(sess.Role),
		Welcome: welcome,
	}, nil
}

// Route returns the view a role lands on after login: admins on the admin
// dashboard, workers on their assigned list, everyone else on the citizen
// dashboard.
func Route(r role.Role) role.View {
	return r.DefaultView()
}

// RegisterBanner is the registration screen's error text. Unlike login it
// has no status-specific wording.
func RegisterBanner(err error) string {
	if ae, ok := err.(*apperrors.AuthError); ok {
		switch ae.Kind {
		case apperrors.AuthNetwork:
			return ae.Banner()
		case apperrors.AuthRejected, apperrors.AuthUnauthorized, apperrors.AuthRateLimited, apperrors.AuthServerFault:
			if ae.Message != "" {
				return ae.Message
			}
		}
		return "Registration failed. Please try again."
	}
	if fe, ok := err.(FieldErrors); ok && len(fe) > 0 {
		return fe[0].Message
	}
	return "Registration failed. Please try again."
}

func displayName(u api.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
