package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bankaccountmanager/account-api/docs"
	"github.com/bankaccountmanager/account-api/internal/api/handler"
	"github.com/bankaccountmanager/account-api/internal/api/middleware"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
	"github.com/bankaccountmanager/account-api/internal/pkg/validate"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	AuthService    ports.AuthService
	AccountService ports.AccountService
	Tokens         ports.TokenVerifier
	Policies       *policy.Engine
	Audit          ports.AuditRecorder
	Probes         map[string]handler.Probe

	// AdminAPIKey enables POST /admin/roles when set.
	AdminAPIKey       string
	HideFailureReason bool

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It panics when a route references a policy the engine does not know.
func NewRouter(deps Dependencies) *echo.Echo {
	deps.Policies.MustHave(policy.RequireVipCurrentAccount)
	if deps.Audit == nil {
		deps.Audit = ports.NopAuditRecorder{}
	}
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log, deps.HideFailureReason)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "bank",
		Subsystem:  "http",
		Registerer: deps.Registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	accountHandler := handler.NewAccountHandler(deps.AccountService)
	authMiddleware := middleware.Auth(deps.Tokens)
	vipPolicy := middleware.Policy(
		deps.Policies,
		policy.RequireVipCurrentAccount,
		middleware.AccountTypeFromParam(deps.AccountService, "id"),
		deps.Audit,
		deps.Log,
	)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Account routes (bearer token required) ---
	accounts := e.Group("/accounts", authMiddleware)
	accounts.POST("", accountHandler.Open)
	accounts.GET("", accountHandler.List)
	accounts.GET("/:id", accountHandler.Get)
	accounts.GET("/:id/vip", accountHandler.GetVip, vipPolicy)

	// --- Operator routes ---
	if deps.AdminAPIKey != "" {
		admin := e.Group("/admin", middleware.AdminKey(deps.AdminAPIKey))
		admin.POST("/roles", authHandler.AssignRole)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Probes)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
