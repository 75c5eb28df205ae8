package ports

import (
	"context"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// OpenAccountInput carries the fields needed to open an account.
type OpenAccountInput struct {
	Username string
	Type     domain.AccountType
}

// AccountService defines use-case operations for the caller's accounts.
type AccountService interface {
	Open(ctx context.Context, input OpenAccountInput) (*domain.Account, error)
	List(ctx context.Context, username string) ([]*domain.Account, error)
	// Get returns domain.ErrForbidden when username does not own the account.
	Get(ctx context.Context, username, accountID string) (*domain.Account, error)
	// AccountType resolves the resource attribute consumed by the policy engine.
	AccountType(ctx context.Context, accountID string) (domain.AccountType, error)
}
