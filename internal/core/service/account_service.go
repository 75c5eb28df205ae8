package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

type AccountService struct {
	repo   ports.AccountRepository
	users  ports.CredentialStore
	logger zerolog.Logger
}

func NewAccountService(repo ports.AccountRepository, users ports.CredentialStore, logger zerolog.Logger) *AccountService {
	return &AccountService{repo: repo, users: users, logger: logger}
}

// Open creates a zero-balance account of the requested type for the caller.
func (s *AccountService) Open(ctx context.Context, input ports.OpenAccountInput) (*domain.Account, error) {
	if !input.Type.Valid() {
		return nil, domain.ErrUnknownAccountType
	}

	owner, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		ID:        uuid.NewString(),
		Number:    generateAccountNumber(),
		Type:      input.Type,
		UserID:    owner.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to open account")
		return nil, err
	}

	s.logger.Info().Str("account_id", account.ID).Str("type", account.Type.String()).Str("username", input.Username).Msg("account opened")
	return account, nil
}

// List returns the caller's own accounts.
func (s *AccountService) List(ctx context.Context, username string) ([]*domain.Account, error) {
	owner, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, owner.ID)
}

// Get returns the account when the caller owns it.
func (s *AccountService) Get(ctx context.Context, username, accountID string) (*domain.Account, error) {
	owner, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.UserID != owner.ID {
		return nil, domain.ErrForbidden
	}
	return account, nil
}

// AccountType resolves the account-type attribute for policy evaluation.
func (s *AccountService) AccountType(ctx context.Context, accountID string) (domain.AccountType, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return domain.AccountTypeUnknown, err
	}
	return account.Type, nil
}

// generateAccountNumber returns a number in the format BAM-XXXXXXXXXX.
func generateAccountNumber() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("BAM-%010X", time.Now().UnixNano()&0xFFFFFFFFFF)
	}
	return fmt.Sprintf("BAM-%010X", b)
}
