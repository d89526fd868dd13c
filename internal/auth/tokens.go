package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stagedoor/api/internal/clock"
	"github.com/stagedoor/api/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the bearer tokens that carry a caller's
// identity and role across the transport boundary.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret string, ttl time.Duration, clk clock.Clock) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (m *TokenManager) Issue(user domain.User) (string, error) {
	now := m.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (m *TokenManager) Verify(tokenString string) (domain.Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(
		tokenString,
		&c,
		func(t *jwt.Token) (any, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}
	if c.Subject == "" || !domain.ValidRole(domain.Role(c.Role)) {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{UserID: c.Subject, Role: domain.Role(c.Role)}, nil
}
