// Package session issues and reads the signed token that carries a logged-in
// user's claims. Handlers trust these claims for the token's lifetime; only
// operations that must notice a deleted account go back to the store.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Dev-2427/Dev-MyTodo/internal/entity"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

// Claims is the claim set embedded in a session token. Username is nil when
// the account has not picked a username yet (onboarding incomplete).
type Claims struct {
	Email    string  `json:"email"`
	Username *string `json:"username"`
	Provider string  `json:"provider"`
	jwt.RegisteredClaims
}

// UserID returns the account id the token was issued for.
func (c *Claims) UserID() string { return c.Subject }

// Manager signs and parses session tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue produces a fresh token for the given user. It is called after any
// successful identity operation: login, OAuth login, signup verification and
// username change.
func (m *Manager) Issue(user *entity.User) (string, error) {
	var username *string
	if user.Username != "" {
		u := user.Username
		username = &u
	}

	now := time.Now()
	claims := &Claims{
		Email:    user.Email,
		Username: username,
		Provider: string(user.Provider),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token's signature and expiry and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
