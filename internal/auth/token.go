package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shop-service/internal/models"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken covers every verification failure: missing credential,
// malformed token, bad signature, expiry. Callers are not told which.
var ErrInvalidToken = errors.New("invalid token")

const bearerPrefix = "Bearer"

// Identity is the authenticated caller extracted from a verified token.
type Identity struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == models.RoleAdmin
}

type claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with an HS256 secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue creates a signed token carrying the user's id and role.
func (ts *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	})

	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token and returns the caller identity.
// Any failure is reported as ErrInvalidToken.
func (ts *TokenService) Verify(raw string) (Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	if c.UserID == 0 || (c.Role != models.RoleAdmin && c.Role != models.RoleUser) {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: c.UserID, Role: c.Role}, nil
}

// VerifyHeader extracts the bearer credential from an Authorization header
// value and verifies it.
func (ts *TokenService) VerifyHeader(header string) (Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerPrefix {
		return Identity{}, ErrInvalidToken
	}
	return ts.Verify(parts[1])
}
