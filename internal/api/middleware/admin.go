package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HeaderAdminKey carries the operator API key on admin routes.
const HeaderAdminKey = "X-Admin-Key"

// AdminKey rejects requests whose X-Admin-Key header does not match key.
func AdminKey(key string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get(HeaderAdminKey)
			if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}
			return next(c)
		}
	}
}
