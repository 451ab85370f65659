// Package validation holds the login and sign-up form checks. They are pure functions over
// the submitted field values: no state, no I/O.
package validation

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// User-facing notices.
const (
	NoticeMissingFields    = "Please fill out all fields."
	NoticePasswordMismatch = "Passwords do not match."
	NoticePasswordTooShort = "Password must be at least 6 characters long."
)

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 6

// Error is a user-correctable form problem. Notice is safe to show as-is.
type Error struct {
	Notice string
}

func (e *Error) Error() string {
	return e.Notice
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance. It caches struct info, so it is built once.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", validators.NotBlank)
	})
	return validate
}

// LoginForm mirrors the fields of the login page.
type LoginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// SignUpForm mirrors the fields of the sign-up page.
type SignUpForm struct {
	Username        string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f LoginForm) Trimmed() LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(f.Username),
		Password: strings.TrimSpace(f.Password),
	}
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (f SignUpForm) Trimmed() SignUpForm {
	return SignUpForm{
		Username:        strings.TrimSpace(f.Username),
		Password:        strings.TrimSpace(f.Password),
		ConfirmPassword: strings.TrimSpace(f.ConfirmPassword),
	}
}

// ValidateLogin passes iff username and password are non-empty after trimming.
func ValidateLogin(form LoginForm) error {
	if err := Validator().Struct(form.Trimmed()); err != nil {
		return &Error{Notice: NoticeMissingFields}
	}
	return nil
}

// ValidateSignUp runs the sign-up checks in order and stops at the first failure:
// all fields present, passwords equal, password long enough.
func ValidateSignUp(form SignUpForm) error {
	form = form.Trimmed()
	v := Validator()

	if err := v.Struct(form); err != nil {
		return &Error{Notice: NoticeMissingFields}
	}

	if err := v.VarWithValue(form.Password, form.ConfirmPassword, "eqfield"); err != nil {
		return &Error{Notice: NoticePasswordMismatch}
	}

	if err := v.Var(form.Password, fmt.Sprintf("min=%d", MinPasswordLength)); err != nil {
		return &Error{Notice: NoticePasswordTooShort}
	}

	return nil
}
