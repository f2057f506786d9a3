package auth

import (
	stderrors "errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "roadfix/internal/errors"
)

// validate is shared; validator caches struct metadata per type.
var validate = validator.New()

// LoginForm is the login screen input.
type LoginForm struct {
	Email      string `validate:"required,email"`
	Password   string `validate:"required,min=6"`
	RememberMe bool
}

// RegisterForm is the registration screen input.
type RegisterForm struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Phone           string `validate:"required"`
	Address         string `validate:"required"`
	Role            string `validate:"omitempty,oneof=citizen worker admin"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// FieldErrors collects one ValidationError per failing field, in field
// order.
type FieldErrors []*apperrors.ValidationError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each field error to errors.As.
func (fe FieldErrors) Unwrap() []error {
	out := make([]error, 0, len(fe))
	for _, e := range fe {
		out = append(out, e)
	}
	return out
}

// For returns the message for field, or "".
func (fe FieldErrors) For(field string) string {
	for _, e := range fe {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// Validate checks the login form.
//
// Returns nil or FieldErrors with messages for "email" and "password".
func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return toFieldErrors(validate.Struct(f))
}

// Validate checks the registration form.
//
// Password confirmation is reported first, matching the order the user
// reads the banner in.
func (f RegisterForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	if f.Password != f.ConfirmPassword {
		return FieldErrors{apperrors.NewValidationError("confirmPassword", "Passwords do not match")}
	}
	return toFieldErrors(validate.Struct(f))
}

// toFieldErrors turns validator output into user-facing messages.
func toFieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.NewValidationError(fieldKey(fe.Field()), message(fe)))
	}
	return out
}

// fieldKey lower-cases the first letter: "ConfirmPassword" → "confirmPassword".
func fieldKey(name string) string {
	if name == "" {
		return name
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func message(fe validator.FieldError) string {
	label := map[string]string{
		"Name":            "Name",
		"Email":           "Email",
		"Phone":           "Phone",
		"Address":         "Address",
		"Role":            "Role",
		"Password":        "Password",
		"ConfirmPassword": "Password confirmation",
	}[fe.Field()]
	if label == "" {
		label = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return label + " must be at least " + fe.Param() + " characters"
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return label + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return label + " is invalid"
}
