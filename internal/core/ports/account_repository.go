package ports

import (
	"context"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// AccountRepository defines persistence operations for bank accounts.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	// FindByID returns domain.ErrAccountNotFound when no account matches.
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Account, error)
}
