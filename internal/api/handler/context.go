package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bankaccountmanager/account-api/internal/api/middleware"
	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// ctxCaller extracts the caller injected by the Auth middleware and fails fast
// when it is absent; presence of both values proves the middleware ran.
func ctxCaller(c echo.Context) (username string, role domain.Role, err error) {
	username, _ = c.Get(middleware.ContextUsername).(string)
	role, _ = c.Get(middleware.ContextRole).(domain.Role)
	if username == "" || !role.Valid() {
		return "", domain.RoleNone, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return username, role, nil
}
