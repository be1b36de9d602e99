package auth

import (
	"errors"
	"fmt"
	"time"

	"corredora-platform/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager mints and validates the three token kinds. Access, refresh and
// reset tokens are signed under distinct secrets; a token signed under one
// secret never verifies under another.
//
// The manager is stateless: validity of any token is entirely determined by
// its signature and expiry at verification time.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	resetSecret   []byte

	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

func NewManager(cfg config.AuthConfig) (*Manager, error) {
	if cfg.AccessSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.RefreshSecret == "" {
		return nil, errors.New("JWT_REFRESH_SECRET is required")
	}
	resetSecret := cfg.ResetSecret
	if resetSecret == "" {
		// Documented fallback inherited from the original deployment.
		resetSecret = config.DefaultResetSecret
	}

	m := &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		resetSecret:   []byte(resetSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		resetTTL:      cfg.ResetTTL,
	}
	if m.accessTTL <= 0 {
		m.accessTTL = 15 * time.Minute
	}
	if m.refreshTTL <= 0 {
		m.refreshTTL = 7 * 24 * time.Hour
	}
	if m.resetTTL <= 0 {
		m.resetTTL = 15 * time.Minute
	}
	return m, nil
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

/* ===================== ISSUE TOKENS ===================== */

// IssuePair signs a fresh access+refresh pair for the principal.
func (m *Manager) IssuePair(now time.Time, p Principal) (TokenPair, error) {
	access, err := m.SignAccessToken(now, p)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.SignRefreshToken(now, p)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) SignAccessToken(now time.Time, p Principal) (string, error) {
	return m.issue(now, Claims{
		UserID:    p.ID,
		Email:     p.Email,
		Role:      p.Role,
		TokenKind: TokenKindAccess,
	}, m.accessTTL, m.accessSecret)
}

func (m *Manager) SignRefreshToken(now time.Time, p Principal) (string, error) {
	return m.issue(now, Claims{
		UserID:    p.ID,
		Email:     p.Email,
		Role:      p.Role,
		TokenKind: TokenKindRefresh,
	}, m.refreshTTL, m.refreshSecret)
}

// SignResetToken binds only a user id and the fixed reset purpose. It is a
// single-purpose credential, never usable for authentication.
func (m *Manager) SignResetToken(now time.Time, userID int64) (string, error) {
	return m.issue(now, Claims{
		UserID:    userID,
		Purpose:   PurposeReset,
		TokenKind: TokenKindReset,
	}, m.resetTTL, m.resetSecret)
}

/* ===================== VERIFY TOKEN ===================== */

// Verify validates signature, expiry and kind under the secret configured for
// the expected kind. `now` is injectable for deterministic tests.
func (m *Manager) Verify(tokenString string, expected TokenKind, now time.Time) (Claims, error) {
	secret, err := m.secretFor(expected)
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	if _, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return Claims{}, err
	}

	if claims.TokenKind != expected {
		return Claims{}, errors.New("token_kind mismatch")
	}
	if claims.UserID <= 0 {
		return Claims{}, errors.New("user_id missing")
	}

	switch expected {
	case TokenKindAccess, TokenKindRefresh:
		if claims.Email == "" {
			return Claims{}, errors.New("email missing")
		}
		if claims.Role == "" {
			return Claims{}, errors.New("role missing")
		}
	case TokenKindReset:
		if claims.Purpose != PurposeReset {
			return Claims{}, errors.New("purpose mismatch")
		}
	}

	return claims, nil
}

/* ===================== INTERNAL ISSUE ===================== */

func (m *Manager) issue(now time.Time, claims Claims, ttl time.Duration, secret []byte) (string, error) {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (m *Manager) secretFor(kind TokenKind) ([]byte, error) {
	switch kind {
	case TokenKindAccess:
		return m.accessSecret, nil
	case TokenKindRefresh:
		return m.refreshSecret, nil
	case TokenKindReset:
		return m.resetSecret, nil
	default:
		return nil, fmt.Errorf("unknown token kind %q", kind)
	}
}
