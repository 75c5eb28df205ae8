package handler

import (
	"time"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// fieldErrorsResponse is returned when validation or the password policy fails.
type fieldErrorsResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type assignRoleRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"required,oneof=User VipUser PlatinumUser"`
}

type authResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	User      *domain.Identity `json:"user"`
}

// --- Accounts ---

type openAccountRequest struct {
	Type string `json:"type" validate:"required,oneof=Current Savings"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Type      string    `json:"type"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type listAccountsResponse struct {
	Accounts []accountResponse `json:"accounts"`
}

type vipAccountResponse struct {
	Account accountResponse `json:"account"`
	Policy  string          `json:"policy"`
}
