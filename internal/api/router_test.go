package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/api/handler"
	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
	"github.com/bankaccountmanager/account-api/internal/core/service"
)

type nopAuthService struct{}

func (nopAuthService) Register(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
	return nil, domain.ErrEmailAlreadyExists
}

func (nopAuthService) Login(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
	return nil, domain.ErrUserNotFound
}

func (nopAuthService) AssignRole(context.Context, string, domain.Role) (*domain.Identity, error) {
	return &domain.Identity{Username: "alice"}, nil
}

type memAccountService struct {
	accounts map[string]*domain.Account
	owners   map[string]string
}

func (m *memAccountService) Open(context.Context, ports.OpenAccountInput) (*domain.Account, error) {
	return nil, nil
}

func (m *memAccountService) List(context.Context, string) ([]*domain.Account, error) {
	return nil, nil
}

func (m *memAccountService) Get(_ context.Context, username, id string) (*domain.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if m.owners[id] != username {
		return nil, domain.ErrForbidden
	}
	return a, nil
}

func (m *memAccountService) AccountType(_ context.Context, id string) (domain.AccountType, error) {
	a, ok := m.accounts[id]
	if !ok {
		return domain.AccountTypeUnknown, domain.ErrAccountNotFound
	}
	return a.Type, nil
}

type routerFixture struct {
	e      *echo.Echo
	tokens *service.TokenService
}

func newRouterFixture(t *testing.T, adminKey string) *routerFixture {
	t.Helper()
	tokens, err := service.NewTokenService(service.TokenConfig{Issuer: "bank-api", Audience: "bank-clients", Secret: "router-secret"})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	engine, err := policy.NewEngine(policy.DefaultRequirements()...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	accounts := &memAccountService{
		accounts: map[string]*domain.Account{
			"cur-1": {ID: "cur-1", Type: domain.AccountCurrent, CreatedAt: time.Now()},
			"sav-1": {ID: "sav-1", Type: domain.AccountSavings, CreatedAt: time.Now()},
		},
		owners: map[string]string{"cur-1": "alice", "sav-1": "alice"},
	}
	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		AuthService:    nopAuthService{},
		AccountService: accounts,
		Tokens:         tokens,
		Policies:       engine,
		Probes:         map[string]handler.Probe{"mongodb": func(context.Context) error { return nil }},
		AdminAPIKey:    adminKey,
		Registerer:     reg,
		Gatherer:       reg,
		Log:            zerolog.Nop(),
	})
	return &routerFixture{e: e, tokens: tokens}
}

func (f *routerFixture) bearer(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	tok, err := f.tokens.Issue(&domain.Identity{ID: "id-" + username, Username: username, Roles: []domain.Role{role}})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return "Bearer " + tok.Token
}

func (f *routerFixture) do(method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_VipPolicy(t *testing.T) {
	f := newRouterFixture(t, "")

	cases := []struct {
		name string
		role domain.Role
		path string
		code int
	}{
		{"vip on current", domain.RoleVipUser, "/accounts/cur-1/vip", http.StatusOK},
		{"vip on savings", domain.RoleVipUser, "/accounts/sav-1/vip", http.StatusForbidden},
		{"user on current", domain.RoleUser, "/accounts/cur-1/vip", http.StatusForbidden},
		{"platinum on current", domain.RolePlatinumUser, "/accounts/cur-1/vip", http.StatusForbidden},
		{"unknown account", domain.RoleVipUser, "/accounts/nope/vip", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := f.do(http.MethodGet, tc.path, f.bearer(t, "alice", tc.role), "")
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d (%s)", tc.name, tc.code, rec.Code, rec.Body.String())
		}
	}
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.do(http.MethodGet, "/accounts/cur-1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "unauthenticated") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/accounts/cur-1", f.bearer(t, "mallory", domain.RoleUser), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a foreign account, got %d", rec.Code)
	}
}

func TestRouter_AuthErrorsUseEnvelope(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.do(http.MethodPost, "/auth/register", "", `{"username":"a","email":"a@b.com","password":"x"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	rec = f.do(http.MethodPost, "/auth/login", "", `{"email":"a@b.com","password":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_AdminRoutesRequireKey(t *testing.T) {
	body := `{"email":"alice@bank.io","role":"VipUser"}`

	f := newRouterFixture(t, "")
	if rec := f.do(http.MethodPost, "/admin/roles", "", body); rec.Code != http.StatusNotFound {
		t.Fatalf("expected admin routes to be absent, got %d", rec.Code)
	}

	f = newRouterFixture(t, "s3cret")
	if rec := f.do(http.MethodPost, "/admin/roles", "", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/admin/roles", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Admin-Key", "s3cret")
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d", rec.Code)
	}
}

func TestRouter_Observability(t *testing.T) {
	f := newRouterFixture(t, "")

	for _, path := range []string{"/health", "/health/ready", "/metrics"} {
		if rec := f.do(http.MethodGet, path, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_PanicsOnMissingPolicy(t *testing.T) {
	engine, err := policy.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered policy")
		}
	}()
	NewRouter(Dependencies{Policies: engine, Log: zerolog.Nop()})
}
