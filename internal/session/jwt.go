package session

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTStore issues self-contained HS256 tokens. Stateless: Revoke is a
// no-op and tokens stay valid until they expire, but the strategy works
// across multiple processes sharing the secret.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTStore(secret []byte, ttl time.Duration) *JWTStore {
	return &JWTStore{secret: secret, ttl: ttl}
}

func (s *JWTStore) Issue(_ context.Context, subject, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *JWTStore) Validate(_ context.Context, token string) (*Identity, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, nil
	}
	return &Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

func (s *JWTStore) Revoke(_ context.Context, _ string) error {
	return nil
}
