package session

import (
	"context"
	"time"
)

// Roles carried by a session. Authorization is decided by callers on the
// Role field; validation only establishes who the token belongs to.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

// Store issues and validates bearer tokens. Validate returns (nil, nil)
// for unknown, malformed or expired tokens; an error only signals an
// infrastructure failure.
type Store interface {
	Issue(ctx context.Context, subject, role string) (token string, expiresAt time.Time, err error)
	Validate(ctx context.Context, token string) (*Identity, error)
	Revoke(ctx context.Context, token string) error
}

// New selects the session strategy: signed stateless tokens when a secret
// is configured, an in-memory table of opaque tokens otherwise. The
// in-memory variant is correct for a single process only.
func New(secret string, ttl time.Duration) Store {
	if secret != "" {
		return NewJWTStore([]byte(secret), ttl)
	}
	return NewMemoryStore(ttl)
}
