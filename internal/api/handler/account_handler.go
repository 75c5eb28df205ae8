package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bankaccountmanager/account-api/internal/api/metrics"
	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

// AccountHandler handles HTTP requests for the caller's accounts.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// Open handles POST /accounts.
//
// @Summary      Open an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      openAccountRequest  true  "Account type"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  fieldErrorsResponse
// @Failure      401   {object}  errorResponse
// @Router       /accounts [post]
func (h *AccountHandler) Open(c echo.Context) error {
	username, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var req openAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	accountType, err := domain.ParseAccountType(req.Type)
	if err != nil {
		return err
	}

	account, err := h.service.Open(c.Request().Context(), ports.OpenAccountInput{
		Username: username,
		Type:     accountType,
	})
	if err != nil {
		return err
	}

	metrics.AccountsOpenedTotal.WithLabelValues(account.Type.String()).Inc()
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// List handles GET /accounts.
//
// @Summary      List the caller's accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listAccountsResponse
// @Failure      401  {object}  errorResponse
// @Router       /accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	username, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	accounts, err := h.service.List(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listAccountsResponse{Accounts: toAccountResponses(accounts)})
}

// Get handles GET /accounts/:id.
//
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  accountResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id} [get]
func (h *AccountHandler) Get(c echo.Context) error {
	username, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), username, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// GetVip handles GET /accounts/:id/vip. The route is guarded by the
// RequireVipCurrentAccount policy, so reaching the handler means it allowed.
//
// @Summary      VIP view of a current account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  vipAccountResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /accounts/{id}/vip [get]
func (h *AccountHandler) GetVip(c echo.Context) error {
	username, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	account, err := h.service.Get(c.Request().Context(), username, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vipAccountResponse{
		Account: toAccountResponse(account),
		Policy:  policy.RequireVipCurrentAccount,
	})
}
