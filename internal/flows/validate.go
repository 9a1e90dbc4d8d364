package flows

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginInput is the login request after trimming.
type LoginInput struct {
	Email    string
	Password string
}

// Validate checks the login shape only; credentials are checked by RunLogin.
func (r LoginInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

// AccountInput is the signup request after trimming.
type AccountInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Validate enforces signup field rules. Password length is counted in bytes.
func (r AccountInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.FirstName, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.RuneLength(1, 200)),
	)
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
