package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/service"
)

func newTokens(t *testing.T, secret string) *service.TokenService {
	t.Helper()
	svc, err := service.NewTokenService(service.TokenConfig{Issuer: "bank-api", Audience: "bank-clients", Secret: secret})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func issue(t *testing.T, tokens *service.TokenService, username string, role domain.Role) string {
	t.Helper()
	tok, err := tokens.Issue(&domain.Identity{ID: "id-" + username, Username: username, Roles: []domain.Role{role}, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok.Token
}

func runAuth(t *testing.T, tokens *service.TokenService, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := Auth(tokens)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := newTokens(t, "secret-key")
	signed := issue(t, tokens, "alice", domain.RoleVipUser)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(tokens)(func(c echo.Context) error {
		called = true
		if c.Get(ContextUsername) != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get(ContextRole) != domain.RoleVipUser {
			t.Fatalf("role not set, got %v", c.Get(ContextRole))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tokens := newTokens(t, "secret-key")
	other := newTokens(t, "another-secret")

	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"not a token":    "Bearer not-a-token",
		"foreign secret": "Bearer " + issue(t, other, "mallory", domain.RolePlatinumUser),
		"no token":       "Bearer",
	}
	for name, header := range cases {
		rec, called := runAuth(t, tokens, header)
		if called {
			t.Fatalf("%s: should not reach next", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
