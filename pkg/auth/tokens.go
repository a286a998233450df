package auth

import (
	"errors"
	"time"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HMAC-signed access and refresh
// tokens. Both carry only the user id; the refresh token additionally lives
// on the user document so it can be revoked.
type TokenManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	return &TokenManager{
		secret:        []byte(cfg.Secret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

func (m *TokenManager) IssueAccess(userID string) (string, error) {
	return m.issue(userID, m.accessExpiry)
}

func (m *TokenManager) IssueRefresh(userID string) (string, error) {
	return m.issue(userID, m.refreshExpiry)
}

func (m *TokenManager) RefreshExpiry() time.Duration {
	return m.refreshExpiry
}

func (m *TokenManager) issue(userID string, expiry time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	})
	return token.SignedString(m.secret)
}

// Verify parses a token and returns the user id it was issued for. Only
// HMAC signatures are accepted.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnauthorized, "invalid or expired token", err)
	}
	if !token.Valid || c.UserID == "" {
		return "", apperr.New(apperr.KindUnauthorized, "invalid token claims")
	}
	return c.UserID, nil
}
