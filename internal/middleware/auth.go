package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	"github.com/childbooklet/booklet-server-go/internal/session"
)

type contextKey string

const IdentityContextKey contextKey = "identity"

func GetIdentity(ctx context.Context) *session.Identity {
	if identity, ok := ctx.Value(IdentityContextKey).(*session.Identity); ok {
		return identity
	}
	return nil
}

type AuthMiddleware struct {
	store session.Store
}

func NewAuthMiddleware(store session.Store) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// Handler rejects requests without a valid bearer token and attaches the
// session identity to the request context. Role checks are separate; see
// RequireRole.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Missing authentication token",
			})
			return
		}

		identity, err := m.store.Validate(r.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("auth middleware: session store error")
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "Authentication failed",
			})
			return
		}

		if identity == nil {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventAuthFailure})
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": "Invalid or expired token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), IdentityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the authenticated identity's role. Must
// run after Handler.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())
			if identity == nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Missing authentication token",
				})
				return
			}
			if identity.Role != role {
				audit.LogFromRequest(r, audit.Event{
					Type:    audit.EventAuthFailure,
					Subject: identity.Subject,
					Details: map[string]interface{}{"required_role": role},
				})
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error": "Insufficient permissions",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
