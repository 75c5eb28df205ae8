package handler

import (
	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

func toLoginInput(req loginRequest) ports.LoginInput {
	return ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}
}

// --- Service output → Response ---

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		Token:     res.Token.Token,
		ExpiresAt: res.Token.ExpiresAt,
		User:      res.User,
	}
}

func toAccountResponse(a *domain.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Number:    a.Number,
		Type:      a.Type.String(),
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

func toAccountResponses(accounts []*domain.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}
