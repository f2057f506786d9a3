package auth

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"roadfix/internal/api"
	apperrors "roadfix/internal/errors"
	"roadfix/internal/role"
	"roadfix/internal/session"
	"roadfix/internal/storage"
)

type fakeAuthenticator struct {
	calls  int
	result *api.AuthResult
	err    error
	reg    api.Registration
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, email, password string) (*api.AuthResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeAuthenticator) Register(ctx context.Context, reg api.Registration) (*api.AuthResult, error) {
	f.calls++
	f.reg = reg
	return f.result, f.err
}

func newTestService(t *testing.T, fake *fakeAuthenticator) (*Service, *session.Store) {
	t.Helper()
	store := session.NewStore(storage.New(filepath.Join(t.TempDir(), "state.csv")))
	return NewService(fake, store), store
}

func TestLoginForm_Validate(t *testing.T) {
	tests := []struct {
		name        string
		form        LoginForm
		field       string
		expectedMsg string
	}{
		{"missing email", LoginForm{Password: "secret1"}, "email", "Email is required"},
		{"bad email", LoginForm{Email: "not-an-email", Password: "secret1"}, "email", "Please enter a valid email address"},
		{"missing password", LoginForm{Email: "a@b.co"}, "password", "Password is required"},
		{"short password", LoginForm{Email: "a@b.co", Password: "12345"}, "password", "Password must be at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			var fe FieldErrors
			if !stderrors.As(err, &fe) {
				t.Fatalf("expected FieldErrors but got %v", err)
			}
			if got := fe.For(tt.field); got != tt.expectedMsg {
				t.Errorf("expected %q but got %q", tt.expectedMsg, got)
			}
			if !apperrors.IsValidation(err) {
				t.Error("expected IsValidation to see through FieldErrors")
			}
		})
	}

	if err := (LoginForm{Email: "admin@solapur.gov", Password: "admin123"}).Validate(); err != nil {
		t.Errorf("expected valid form but got %v", err)
	}
}

func TestRegisterForm_Validate(t *testing.T) {
	base := RegisterForm{
		Name: "Asha", Email: "asha@example.com", Phone: "9999999999", Address: "Solapur",
		Password: "secret1", ConfirmPassword: "secret1",
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid form but got %v", err)
	}

	mismatch := base
	mismatch.ConfirmPassword = "secret2"
	if got := RegisterBanner(mismatch.Validate()); got != "Passwords do not match" {
		t.Errorf("expected mismatch message but got %q", got)
	}

	short := base
	short.Password, short.ConfirmPassword = "123", "123"
	if got := RegisterBanner(short.Validate()); got != "Password must be at least 6 characters" {
		t.Errorf("expected length message but got %q", got)
	}

	badRole := base
	badRole.Role = "mayor"
	if err := badRole.Validate(); err == nil {
		t.Error("expected unknown role to fail validation")
	}
}

func TestLogin_ValidationSkipsServer(t *testing.T) {
	fake := &fakeAuthenticator{}
	svc, _ := newTestService(t, fake)

	_, err := svc.Login(context.Background(), LoginForm{Email: "bad", Password: "x"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if fake.calls != 0 {
		t.Errorf("expected server not to be called, got %d calls", fake.calls)
	}
}

func TestLogin_RoutesByRole(t *testing.T) {
	tests := []struct {
		role     string
		expected role.View
	}{
		{"admin", role.AdminDashboard},
		{"worker", role.WorkerAssigned},
		{"citizen", role.CitizenDashboard},
		{"inspector", role.CitizenDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			fake := &fakeAuthenticator{result: &api.AuthResult{
				Token: "tok",
				User:  api.User{ID: "1", Name: "Test", Role: tt.role},
			}}
			svc, store := newTestService(t, fake)

			res, err := svc.Login(context.Background(), LoginForm{
				Email: DemoCredentials[0].Email, Password: DemoCredentials[0].Password, RememberMe: true,
			})
			if err != nil {
				t.Fatalf("expected no error but got: %v", err)
			}
			if res.Landing != tt.expected {
				t.Errorf("expected landing %v but got %v", tt.expected, res.Landing)
			}
			if !store.Authenticated() {
				t.Error("expected session to be active")
			}
			if email, ok := store.RememberedEmail(); !ok || email != DemoCredentials[0].Email {
				t.Errorf("expected email to be remembered, got %q", email)
			}
		})
	}
}

func TestLogin_ServerErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"unauthorized", &apperrors.APIError{Status: 401}, "Invalid email or password. Please try again."},
		{"rate limited", &apperrors.APIError{Status: 429}, "Too many login attempts. Please try again later."},
		{"server", &apperrors.APIError{Status: 500}, "Server error. Please try again later."},
		{"network", stderrors.New("dial tcp: connection refused"), "Network error. Please check your internet connection."},
		{"other", &apperrors.APIError{Status: 400, Message: "Account locked"}, "Account locked"},
		{"other without text", &apperrors.APIError{Status: 400}, "Login failed. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t, &fakeAuthenticator{err: tt.err})

			_, err := svc.Login(context.Background(), LoginForm{Email: "a@b.co", Password: "secret1"})
			var authErr *apperrors.AuthError
			if !stderrors.As(err, &authErr) {
				t.Fatalf("expected AuthError but got %v", err)
			}
			if authErr.Banner() != tt.expected {
				t.Errorf("expected banner %q but got %q", tt.expected, authErr.Banner())
			}
			if store.Authenticated() {
				t.Error("expected store to stay anonymous")
			}
		})
	}
}

func TestRegister_DefaultsToCitizen(t *testing.T) {
	fake := &fakeAuthenticator{result: &api.AuthResult{
		Token: "tok",
		User:  api.User{ID: "5", Name: "Asha", Role: "citizen"},
	}}
	svc, _ := newTestService(t, fake)

	res, err := svc.Register(context.Background(), RegisterForm{
		Name: "Asha", Email: "asha@example.com", Phone: "99", Address: "Solapur",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if fake.reg.Role != "citizen" {
		t.Errorf("expected role to default to citizen but got %q", fake.reg.Role)
	}
	if res.Landing != role.CitizenDashboard {
		t.Errorf("expected citizen dashboard but got %v", res.Landing)
	}
}

func TestRegisterBanner(t *testing.T) {
	if got := RegisterBanner(&apperrors.AuthError{Kind: apperrors.AuthRejected, Message: "Email already registered"}); got != "Email already registered" {
		t.Errorf("expected server text but got %q", got)
	}
	if got := RegisterBanner(&apperrors.AuthError{Kind: apperrors.AuthServerFault}); got != "Registration failed. Please try again." {
		t.Errorf("expected generic text but got %q", got)
	}
}
