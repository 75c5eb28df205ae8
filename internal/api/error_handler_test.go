package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

func renderError(t *testing.T, err error, hide bool) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	NewHTTPErrorHandler(zerolog.Nop(), hide)(err, c)
	return rec
}

func TestHTTPErrorHandler_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrEmailAlreadyExists, http.StatusConflict},
		{domain.ErrUsernameAlreadyExists, http.StatusConflict},
		{domain.ErrUserNotFound, http.StatusNotFound},
		{domain.ErrInvalidPassword, http.StatusUnauthorized},
		{domain.ErrTooManyAttempts, http.StatusTooManyRequests},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", domain.ErrUnknownAccountType), http.StatusBadRequest},
		{fmt.Errorf("%w: RequireNothing", domain.ErrUnknownPolicy), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := renderError(t, tc.err, false)
		if rec.Code != tc.code {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
		}
	}
}

func TestHTTPErrorHandler_TokenErrorsAreUnauthenticated(t *testing.T) {
	for _, err := range []error{
		domain.ErrTokenMalformed,
		domain.ErrSignatureMismatch,
		domain.ErrTokenExpired,
		domain.ErrIssuerOrAudienceMismatch,
	} {
		rec := renderError(t, fmt.Errorf("verify: %w", err), false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", err, rec.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["error"] != "unauthenticated" {
			t.Fatalf("%v: expected generic message, got %q", err, body["error"])
		}
	}
}

func TestHTTPErrorHandler_FieldErrors(t *testing.T) {
	err := &domain.ValidationError{Fields: []domain.FieldError{
		{Field: "email", Message: "must be a valid email"},
		{Field: "password", Message: "is required"},
	}}
	rec := renderError(t, err, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Errors []domain.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Errors) != 2 || body.Errors[0].Field != "email" {
		t.Fatalf("unexpected errors payload: %+v", body.Errors)
	}

	weak := &domain.WeakPasswordError{Rules: []domain.FieldError{
		{Field: domain.PasswordRequiresDigit, Message: "password must contain a digit"},
	}}
	rec = renderError(t, weak, false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(body.Errors) != 1 || body.Errors[0].Field != domain.PasswordRequiresDigit {
		t.Fatalf("unexpected errors payload: %+v", body.Errors)
	}
}

func TestHTTPErrorHandler_HideFailureReason(t *testing.T) {
	for _, err := range []error{domain.ErrUserNotFound, domain.ErrInvalidPassword} {
		rec := renderError(t, err, true)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", err, rec.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if body["error"] != "invalid credentials" {
			t.Fatalf("%v: expected 'invalid credentials', got %q", err, body["error"])
		}
	}
}
