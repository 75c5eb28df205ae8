package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bankaccountmanager/account-api/internal/api/metrics"
	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextUsername = "username"
	ContextRole     = "role"
)

// Auth validates the bearer token and injects its username and role into context.
// Every failure is reported as 401 "unauthenticated"; the cause only reaches metrics.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				metrics.TokenRejectionsTotal.WithLabelValues("malformed").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			claims, err := verifier.Verify(strings.TrimSpace(parts[1]))
			if err != nil {
				metrics.TokenRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}
			if claims.Username == "" || !claims.Role.Valid() {
				metrics.TokenRejectionsTotal.WithLabelValues("claims").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			c.Set(ContextUsername, claims.Username)
			c.Set(ContextRole, claims.Role)

			return next(c)
		}
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrSignatureMismatch):
		return "signature"
	case errors.Is(err, domain.ErrIssuerOrAudienceMismatch):
		return "issuer_audience"
	default:
		return "malformed"
	}
}
