// @title           Bank Account Manager API
// @version         1.0
// @description     Registration, login, bearer tokens and policy-based access to bank accounts.
// @BasePath        /
//
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
//
// @securityDefinitions.apikey AdminKey
// @in                         header
// @name                       X-Admin-Key
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bankaccountmanager/account-api/internal/api"
	"github.com/bankaccountmanager/account-api/internal/api/handler"
	"github.com/bankaccountmanager/account-api/internal/core/policy"
	"github.com/bankaccountmanager/account-api/internal/core/service"
	"github.com/bankaccountmanager/account-api/internal/infrastructure/config"
	"github.com/bankaccountmanager/account-api/internal/infrastructure/db/mongo"
	"github.com/bankaccountmanager/account-api/internal/infrastructure/db/redis"
	"github.com/bankaccountmanager/account-api/internal/infrastructure/queue"
	"github.com/bankaccountmanager/account-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "account-api",
		Env:     cfg.Env,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	tokens, err := service.NewTokenService(service.TokenConfig{
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Secret:   cfg.JWT.Secret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("token service")
	}

	extra, err := policy.ParseRequirements(cfg.Policies)
	if err != nil {
		log.Fatal().Err(err).Msg("AUTHZ_POLICIES")
	}
	engine, err := policy.NewEngine(append(policy.DefaultRequirements(), extra...)...)
	if err != nil {
		log.Fatal().Err(err).Msg("policy engine")
	}
	log.Info().Strs("policies", engine.Names()).Msg("policy engine ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}
	credentials := mongo.NewCredentialStore(db)
	accountRepo := mongo.NewAccountRepository(db)

	// --- Redis ---
	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis")
	}
	defer rdb.Close()

	// --- Audit pipeline ---
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, mongo.NewAuditRepository(db), logger.Component(log, "audit"))
	dispatcher.Start(auditCtx)

	// --- Services ---
	verifier := service.NewCredentialVerifier(credentials, cfg.Auth.BcryptCost, logger.Component(log, "credentials"))
	authService := service.NewAuthService(verifier, tokens, logger.Component(log, "auth"),
		service.WithLoginLimiter(redis.NewLoginLimiter(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)),
		service.WithAuditRecorder(dispatcher),
	)
	accountService := service.NewAccountService(accountRepo, credentials, logger.Component(log, "accounts"))

	e := api.NewRouter(api.Dependencies{
		AuthService:    authService,
		AccountService: accountService,
		Tokens:         tokens,
		Policies:       engine,
		Audit:          dispatcher,
		Probes: map[string]handler.Probe{
			"mongodb": handler.MongoProbe(db),
			"redis":   handler.RedisProbe(rdb),
		},
		AdminAPIKey:       cfg.AdminAPIKey,
		HideFailureReason: cfg.Auth.HideFailureReason,
		Log:               logger.Component(log, "http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	stopAudit()
	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}
