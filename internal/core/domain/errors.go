package domain

import (
	"errors"
	"strings"
)

// Validation and conflicts.
var (
	ErrValidation            = errors.New("validation failed")
	ErrWeakPassword          = errors.New("password does not meet the password policy")
	ErrEmailAlreadyExists    = errors.New("email already registered")
	ErrUsernameAlreadyExists = errors.New("username already taken")
	ErrUnknownRole           = errors.New("unknown role")
	ErrUnknownAccountType    = errors.New("unknown account type")
)

// Authentication.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrTooManyAttempts = errors.New("too many failed login attempts")
)

// Configuration. Fatal at startup.
var ErrMissingSigningConfig = errors.New("token signing config requires issuer, audience and secret")

// Tokens. All of these surface to callers as "unauthenticated".
var (
	ErrEmptyUsername            = errors.New("identity has no username")
	ErrTokenMalformed           = errors.New("token is malformed")
	ErrSignatureMismatch        = errors.New("token signature mismatch")
	ErrTokenExpired             = errors.New("token is expired")
	ErrIssuerOrAudienceMismatch = errors.New("token issuer or audience mismatch")
)

// Authorization and resources.
var (
	ErrUnknownPolicy   = errors.New("unknown authorization policy")
	ErrForbidden       = errors.New("access forbidden")
	ErrAccountNotFound = errors.New("account not found")
)

// IsTokenError reports whether err is one of the token validation failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrIssuerOrAudienceMismatch)
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field error found in one pass.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Password policy rule codes.
const (
	PasswordTooShort            = "PasswordTooShort"
	PasswordTooLong             = "PasswordTooLong"
	PasswordRequiresDigit       = "PasswordRequiresDigit"
	PasswordRequiresUpper       = "PasswordRequiresUpper"
	PasswordRequiresNonAlphanum = "PasswordRequiresNonAlphanumeric"
)

// WeakPasswordError lists every password policy rule that failed.
type WeakPasswordError struct {
	Rules []FieldError
}

func (e *WeakPasswordError) Error() string {
	msgs := make([]string, 0, len(e.Rules))
	for _, r := range e.Rules {
		msgs = append(msgs, r.Message)
	}
	return ErrWeakPassword.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *WeakPasswordError) Is(target error) bool {
	return target == ErrWeakPassword
}
