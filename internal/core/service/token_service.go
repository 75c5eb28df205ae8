package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// TokenConfig is the signing material for access tokens. Every field is required.
type TokenConfig struct {
	Issuer   string
	Audience string
	Secret   string
}

// tokenClaims is the payload of an access token: name and role, plus the
// registered iss/aud/iat/exp claims. The audience is a single string.
type tokenClaims struct {
	Name      string           `json:"name"`
	Role      domain.Role      `json:"role"`
	Issuer    string           `json:"iss"`
	Audience  string           `json:"aud"`
	IssuedAt  *jwt.NumericDate `json:"iat,omitempty"`
	ExpiresAt *jwt.NumericDate `json:"exp,omitempty"`
}

func (c tokenClaims) GetExpirationTime() (*jwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c tokenClaims) GetIssuedAt() (*jwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c tokenClaims) GetNotBefore() (*jwt.NumericDate, error)      { return nil, nil }
func (c tokenClaims) GetIssuer() (string, error)                   { return c.Issuer, nil }
func (c tokenClaims) GetSubject() (string, error)                  { return c.Name, nil }
func (c tokenClaims) GetAudience() (jwt.ClaimStrings, error)       { return jwt.ClaimStrings{c.Audience}, nil }

// TokenService issues and validates HS256 access tokens. It holds only
// immutable configuration and is safe for concurrent use.
type TokenService struct {
	issuer   string
	audience string
	secret   []byte
	now      func() time.Time
}

// NewTokenService fails with domain.ErrMissingSigningConfig when any part of
// the signing config is empty. Call it once at startup.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	var missing []string
	if cfg.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if cfg.Audience == "" {
		missing = append(missing, "audience")
	}
	if cfg.Secret == "" {
		missing = append(missing, "secret")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", domain.ErrMissingSigningConfig, strings.Join(missing, ", "))
	}

	return &TokenService{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		secret:   []byte(cfg.Secret),
		now:      time.Now,
	}, nil
}

// Issue mints a token for identity carrying its username and primary role.
func (s *TokenService) Issue(identity *domain.Identity) (domain.AccessToken, error) {
	if identity == nil || identity.Username == "" {
		return domain.AccessToken{}, domain.ErrEmptyUsername
	}

	now := s.now().UTC().Truncate(time.Second)
	expires := now.Add(domain.AccessTokenTTL)
	role := identity.PrimaryRole()

	claims := tokenClaims{
		Name:      identity.Username,
		Role:      role,
		Issuer:    s.issuer,
		Audience:  s.audience,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.AccessToken{}, fmt.Errorf("sign token: %w", err)
	}

	return domain.AccessToken{
		Token:     signed,
		Subject:   identity.Username,
		Role:      role,
		Issuer:    s.issuer,
		Audience:  s.audience,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// Verify validates token against the service's own issuer, audience and secret.
func (s *TokenService) Verify(token string) (domain.Claims, error) {
	return s.Validate(token, s.issuer, s.audience, string(s.secret))
}

// Validate checks the HMAC over the raw header and payload segments first, so
// any altered byte is a signature mismatch, then checks expiry, issuer and
// audience in that order. A token stays valid up to and including its expiry
// instant. Returned errors carry no cryptographic detail.
func (s *TokenService) Validate(token, expectedIssuer, expectedAudience, secret string) (domain.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.Claims{}, domain.ErrTokenMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return domain.Claims{}, domain.ErrTokenMalformed
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, []byte(secret)); err != nil {
		return domain.Claims{}, domain.ErrSignatureMismatch
	}

	var claims tokenClaims
	_, err = parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.Claims{}, domain.ErrSignatureMismatch
	default:
		return domain.Claims{}, domain.ErrTokenMalformed
	}

	if claims.Name == "" || !claims.Role.Valid() || claims.ExpiresAt == nil {
		return domain.Claims{}, domain.ErrTokenMalformed
	}
	if s.now().After(claims.ExpiresAt.Time) {
		return domain.Claims{}, domain.ErrTokenExpired
	}
	if claims.Issuer != expectedIssuer || claims.Audience != expectedAudience {
		return domain.Claims{}, domain.ErrIssuerOrAudienceMismatch
	}

	out := domain.Claims{
		Username:  claims.Name,
		Role:      claims.Role,
		Issuer:    claims.Issuer,
		Audience:  claims.Audience,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
