package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
	"github.com/bankaccountmanager/account-api/internal/core/ports"
	"github.com/bankaccountmanager/account-api/internal/pkg/validate"
)

// AuthService composes the credential verifier and the token service into the
// register and login flows.
type AuthService struct {
	verifier  *CredentialVerifier
	tokens    *TokenService
	validator *validate.Validator
	limiter   ports.LoginLimiter
	audit     ports.AuditRecorder
	log       zerolog.Logger
	now       func() time.Time
}

type AuthOption func(*AuthService)

// WithLoginLimiter enables failed-login throttling.
func WithLoginLimiter(l ports.LoginLimiter) AuthOption {
	return func(s *AuthService) { s.limiter = l }
}

// WithAuditRecorder sends flow outcomes to r.
func WithAuditRecorder(r ports.AuditRecorder) AuthOption {
	return func(s *AuthService) { s.audit = r }
}

func NewAuthService(verifier *CredentialVerifier, tokens *TokenService, log zerolog.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		verifier:  verifier,
		tokens:    tokens,
		validator: validate.New(),
		audit:     ports.NopAuditRecorder{},
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register checks email uniqueness, then the request fields, then creates the
// identity with role User and issues its first token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Email != "" {
		exists, err := s.verifier.EmailExists(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			s.record(domain.EventRegisterFail, in.Email, in.Username, domain.ErrEmailAlreadyExists)
			return nil, domain.ErrEmailAlreadyExists
		}
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	user, err := s.verifier.Register(ctx, in.Username, in.Email, in.Password)
	if err != nil {
		s.record(domain.EventRegisterFail, in.Email, in.Username, err)
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.audit.Record(domain.AuthEvent{
		Type:      domain.EventRegistered,
		Email:     user.Email,
		Username:  user.Username,
		Role:      token.Role,
		Timestamp: s.now().UTC(),
	})
	return &ports.AuthResult{Token: token, User: user}, nil
}

// Login checks the identity exists, then the request fields, then the
// password, and issues a token on success.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if _, err := s.verifier.Find(ctx, in.Email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.record(domain.EventLoginFail, in.Email, "", err)
		}
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	email := NormalizeEmail(in.Email)
	if s.limiter != nil {
		allowed, err := s.limiter.Allowed(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("login limiter unavailable, continuing")
		} else if !allowed {
			s.record(domain.EventLoginFail, email, "", domain.ErrTooManyAttempts)
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.verifier.Verify(ctx, email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPassword) {
			s.recordFailure(ctx, email)
		}
		s.record(domain.EventLoginFail, email, "", err)
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("failed to reset login failures")
		}
	}

	s.audit.Record(domain.AuthEvent{
		Type:      domain.EventLoginSuccess,
		Email:     user.Email,
		Username:  user.Username,
		Role:      token.Role,
		Timestamp: s.now().UTC(),
	})
	return &ports.AuthResult{Token: token, User: user}, nil
}

// AssignRole grants role to the identity registered under email.
func (s *AuthService) AssignRole(ctx context.Context, email string, role domain.Role) (*domain.Identity, error) {
	user, err := s.verifier.AssignRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	s.audit.Record(domain.AuthEvent{
		Type:      domain.EventRoleAssigned,
		Email:     user.Email,
		Username:  user.Username,
		Role:      role,
		Timestamp: s.now().UTC(),
	})
	return user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Str("email", email).Msg("failed to record login failure")
	}
}

func (s *AuthService) record(t domain.AuthEventType, email, username string, reason error) {
	ev := domain.AuthEvent{
		Type:      t,
		Email:     NormalizeEmail(email),
		Username:  username,
		Timestamp: s.now().UTC(),
	}
	if reason != nil {
		ev.Reason = reason.Error()
	}
	s.audit.Record(ev)
}
