package ports

import (
	"context"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// CredentialStore defines persistence for user identities.
type CredentialStore interface {
	// FindByEmail returns domain.ErrUserNotFound when no identity matches.
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByUsername(ctx context.Context, username string) (*domain.Identity, error)
	// Create inserts the identity with its roles in one write. It returns
	// domain.ErrEmailAlreadyExists or domain.ErrUsernameAlreadyExists on conflict.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	RolesOf(ctx context.Context, identityID string) ([]domain.Role, error)
	// AssignRole adds role to the identity's role set if not already present.
	AssignRole(ctx context.Context, identityID string, role domain.Role) error
}
