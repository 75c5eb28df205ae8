package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/api/metrics"
	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
)

// AttributeResolver loads the resource attribute a policy is evaluated against.
type AttributeResolver func(c echo.Context) (domain.AccountType, error)

// AccountTypeFromParam resolves the account type of the account named by the
// route parameter param.
func AccountTypeFromParam(accounts ports.AccountService, param string) AttributeResolver {
	return func(c echo.Context) (domain.AccountType, error) {
		return accounts.AccountType(c.Request().Context(), c.Param(param))
	}
}

// Policy enforces the named policy for the authenticated caller. Must run after Auth.
func Policy(engine *policy.Engine, name string, resolve AttributeResolver, audit ports.AuditRecorder, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(domain.Role)
			username, _ := c.Get(ContextUsername).(string)
			if !role.Valid() || username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
			}

			accountType, err := resolve(c)
			if err != nil {
				return err
			}

			decision, err := engine.Authorize(name, role, accountType)
			if err != nil {
				return err
			}
			metrics.PolicyDecisionsTotal.WithLabelValues(name, decision.String()).Inc()

			event := domain.AuthEvent{
				Username:  username,
				Role:      role,
				Policy:    name,
				Timestamp: time.Now().UTC(),
			}
			if decision != policy.Allow {
				event.Type = domain.EventAccessDenied
				event.Reason = "requirement not met for " + accountType.String() + " account"
				audit.Record(event)
				log.Info().
					Str("username", username).
					Str("role", role.String()).
					Str("policy", name).
					Str("decision", decision.String()).
					Msg("access denied")
				return domain.ErrForbidden
			}

			event.Type = domain.EventAccessGranted
			audit.Record(event)
			return next(c)
		}
	}
}
