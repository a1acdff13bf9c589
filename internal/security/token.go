package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"txledger/internal/util"
)

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload of every issued token: sub, exp, iat and type.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenManager.
type TokenConfig struct {
	Secret     []byte
	Algorithm  string // HS256, HS384 or HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager issues and verifies HMAC-signed JWTs. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secret     []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenManager validates cfg and returns a TokenManager.
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTokenTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenManager{
		secret:     cfg.Secret,
		method:     method,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of m that reads time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	c := *m
	c.now = now
	return &c
}

// IssueAccessToken signs a short-lived token for subject.
func (m *TokenManager) IssueAccessToken(subject string) (string, error) {
	return m.issue(subject, TokenTypeAccess, m.accessTTL)
}

// IssueRefreshToken signs a long-lived token for subject.
func (m *TokenManager) IssueRefreshToken(subject string) (string, error) {
	return m.issue(subject, TokenTypeRefresh, m.refreshTTL)
}

func (m *TokenManager) issue(subject, tokenType string, ttl time.Duration) (string, error) {
	issuedAt := m.now().UTC()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// DecodeToken verifies algorithm, signature and expiry. Every failure is
// reported as util.ErrUnauthorized so callers cannot tell them apart.
func (m *TokenManager) DecodeToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, util.ErrUnauthorized
	}
	// exp is exclusive: a token is valid during [iat, iat+ttl).
	if !m.now().Before(claims.ExpiresAt.Time) {
		return nil, util.ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, util.ErrUnauthorized
	}
	return claims, nil
}

// DecodeTokenOfType is DecodeToken plus a check of the "type" claim.
func (m *TokenManager) DecodeTokenOfType(token, tokenType string) (*Claims, error) {
	claims, err := m.DecodeToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		return nil, util.ErrUnauthorized
	}
	return claims, nil
}
