package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
)

type captureAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *captureAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func fixedType(t domain.AccountType, err error) AttributeResolver {
	return func(echo.Context) (domain.AccountType, error) { return t, err }
}

func runPolicy(t *testing.T, role domain.Role, resolve AttributeResolver, audit *captureAudit) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	engine, err := policy.NewEngine(policy.DefaultRequirements()...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextUsername, "alice")
	if role != domain.RoleNone {
		c.Set(ContextRole, role)
	}

	called := false
	h := Policy(engine, policy.RequireVipCurrentAccount, resolve, audit, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			_ = c.NoContent(http.StatusForbidden)
		} else {
			e.HTTPErrorHandler(err, c)
		}
	}
	return rec, called
}

func TestPolicy_Grid(t *testing.T) {
	cases := []struct {
		role  domain.Role
		typ   domain.AccountType
		allow bool
	}{
		{domain.RoleVipUser, domain.AccountCurrent, true},
		{domain.RoleVipUser, domain.AccountSavings, false},
		{domain.RoleUser, domain.AccountCurrent, false},
		{domain.RolePlatinumUser, domain.AccountCurrent, false},
		{domain.RoleUser, domain.AccountSavings, false},
	}
	for _, tc := range cases {
		audit := &captureAudit{}
		rec, called := runPolicy(t, tc.role, fixedType(tc.typ, nil), audit)
		if called != tc.allow {
			t.Fatalf("%s/%s: expected allow=%v", tc.role, tc.typ, tc.allow)
		}
		if !tc.allow && rec.Code != http.StatusForbidden {
			t.Fatalf("%s/%s: expected 403, got %d", tc.role, tc.typ, rec.Code)
		}
		if len(audit.events) != 1 {
			t.Fatalf("expected one audit event, got %d", len(audit.events))
		}
		want := domain.EventAccessDenied
		if tc.allow {
			want = domain.EventAccessGranted
		}
		if audit.events[0].Type != want || audit.events[0].Policy != policy.RequireVipCurrentAccount {
			t.Fatalf("unexpected audit event %+v", audit.events[0])
		}
	}
}

func TestPolicy_MissingRoleIsUnauthenticated(t *testing.T) {
	rec, called := runPolicy(t, domain.RoleNone, fixedType(domain.AccountCurrent, nil), &captureAudit{})
	if called {
		t.Fatal("should not reach next")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPolicy_ResolverErrorStopsChain(t *testing.T) {
	audit := &captureAudit{}
	e := echo.New()
	engine, _ := policy.NewEngine(policy.DefaultRequirements()...)
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextUsername, "alice")
	c.Set(ContextRole, domain.RoleVipUser)

	h := Policy(engine, policy.RequireVipCurrentAccount, fixedType(domain.AccountTypeUnknown, domain.ErrAccountNotFound), audit, zerolog.Nop())(func(echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	if err := h(c); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if len(audit.events) != 0 {
		t.Fatalf("expected no audit events, got %d", len(audit.events))
	}
}

func TestPolicy_UnknownPolicyFails(t *testing.T) {
	engine, _ := policy.NewEngine(policy.DefaultRequirements()...)
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set(ContextUsername, "alice")
	c.Set(ContextRole, domain.RoleVipUser)

	h := Policy(engine, "RequireNothing", fixedType(domain.AccountCurrent, nil), &captureAudit{}, zerolog.Nop())(func(echo.Context) error {
		t.Fatal("should not reach next")
		return nil
	})
	err := h(c)
	if !errors.Is(err, domain.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestAdminKey(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		header string
		code   int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusUnauthorized},
		{"s3cret", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodPost, "/admin/roles", nil)
		if tc.header != "" {
			req.Header.Set(HeaderAdminKey, tc.header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := AdminKey("s3cret")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		if err := h(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rec.Code != tc.code {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.code, rec.Code)
		}
	}
}
