package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 7

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// CredentialVerifier checks credentials against the credential store and
// creates new identities. It never logs plaintext passwords.
type CredentialVerifier struct {
	store ports.CredentialStore
	cost  int
	log   zerolog.Logger
	now   func() time.Time
}

func NewCredentialVerifier(store ports.CredentialStore, bcryptCost int, log zerolog.Logger) *CredentialVerifier {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &CredentialVerifier{store: store, cost: bcryptCost, log: log, now: time.Now}
}

// NormalizeEmail is the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Find returns the identity registered under email, or domain.ErrUserNotFound.
func (v *CredentialVerifier) Find(ctx context.Context, email string) (*domain.Identity, error) {
	return v.store.FindByEmail(ctx, NormalizeEmail(email))
}

// EmailExists reports whether an identity is registered under email.
func (v *CredentialVerifier) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := v.Find(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Verify returns the identity for email when password matches its stored hash,
// with the role set refreshed from the store.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.Identity, error) {
	user, err := v.Find(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			v.log.Warn().Err(err).Str("email", user.Email).Msg("stored password hash is unusable")
		}
		return nil, domain.ErrInvalidPassword
	}

	roles, err := v.store.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	user.Roles = roles
	return user, nil
}

// Register creates a new identity holding the default role User. The identity
// and its role are written in a single insert.
func (v *CredentialVerifier) Register(ctx context.Context, username, email, password string) (*domain.Identity, error) {
	email = NormalizeEmail(email)

	exists, err := v.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyExists
	}

	if err := CheckPassword(password); err != nil {
		return nil, err
	}

	if _, err := v.store.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := v.now().UTC()
	created, err := v.store.Create(ctx, &domain.Identity{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Roles:        []domain.Role{domain.RoleUser},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	v.log.Info().Str("username", created.Username).Str("email", created.Email).Msg("identity registered")
	return created, nil
}

// AssignRole adds role to the identity registered under email.
func (v *CredentialVerifier) AssignRole(ctx context.Context, email string, role domain.Role) (*domain.Identity, error) {
	if !role.Valid() {
		return nil, domain.ErrUnknownRole
	}

	user, err := v.Find(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.HasRole(role) {
		return user, nil
	}

	if err := v.store.AssignRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}

	roles, err := v.store.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	user.Roles = roles

	v.log.Info().Str("email", user.Email).Str("role", role.String()).Msg("role assigned")
	return user, nil
}

// CheckPassword enforces the password policy: at least MinPasswordLength
// characters, at most MaxPasswordBytes bytes, with a digit, an uppercase
// letter and a non-alphanumeric character. Every failed rule is reported.
func CheckPassword(password string) error {
	var hasDigit, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var rules []domain.FieldError
	if utf8.RuneCountInString(password) < MinPasswordLength {
		rules = append(rules, domain.FieldError{
			Field:   domain.PasswordTooShort,
			Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength),
		})
	}
	if len(password) > MaxPasswordBytes {
		rules = append(rules, domain.FieldError{
			Field:   domain.PasswordTooLong,
			Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes),
		})
	}
	if !hasDigit {
		rules = append(rules, domain.FieldError{Field: domain.PasswordRequiresDigit, Message: "password must contain a digit"})
	}
	if !hasUpper {
		rules = append(rules, domain.FieldError{Field: domain.PasswordRequiresUpper, Message: "password must contain an uppercase letter"})
	}
	if !hasSymbol {
		rules = append(rules, domain.FieldError{Field: domain.PasswordRequiresNonAlphanum, Message: "password must contain a non-alphanumeric character"})
	}

	if len(rules) > 0 {
		return &domain.WeakPasswordError{Rules: rules}
	}
	return nil
}
