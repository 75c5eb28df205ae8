package ports

import (
	"context"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginInput carries the fields of a login request.
type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by both user-facing flows.
type AuthResult struct {
	Token domain.AccessToken
	User  *domain.Identity
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	AssignRole(ctx context.Context, email string, role domain.Role) (*domain.Identity, error)
}

// TokenVerifier validates bearer tokens against the service's own signing config.
type TokenVerifier interface {
	Verify(token string) (domain.Claims, error)
}
