package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// fieldErrorsResponse carries every failed field or password rule at once.
type fieldErrorsResponse struct {
	Errors []domain.FieldError `json:"errors"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Renders validation and password-policy failures as {"errors": [...]}.
//   - Logs unexpected errors internally without leaking details to the client.
//
// When hideFailureReason is set, unknown users and wrong passwords are both
// reported as 401 "invalid credentials".
func NewHTTPErrorHandler(log zerolog.Logger, hideFailureReason bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			_ = c.JSON(http.StatusBadRequest, fieldErrorsResponse{Errors: ve.Fields})
			return
		}
		var wp *domain.WeakPasswordError
		if errors.As(err, &wp) {
			_ = c.JSON(http.StatusBadRequest, fieldErrorsResponse{Errors: wp.Rules})
			return
		}

		code, msg := resolveError(err, hideFailureReason, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, hideFailureReason bool, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	if hideFailureReason && (errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidPassword)) {
		return http.StatusUnauthorized, "invalid credentials"
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case domain.IsTokenError(err), errors.Is(err, domain.ErrEmptyUsername):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return http.StatusConflict, "email already registered"
	case errors.Is(err, domain.ErrUsernameAlreadyExists):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusUnauthorized, "invalid password"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many failed login attempts"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "account not found"
	case errors.Is(err, domain.ErrUnknownRole), errors.Is(err, domain.ErrUnknownAccountType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnknownPolicy):
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("route references an unregistered policy")
		return http.StatusInternalServerError, "internal server error"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
