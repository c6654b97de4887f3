package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/childbooklet/booklet-server-go/internal/session"
)

func okHandler(captured **session.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = GetIdentity(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	store := session.New("test-session-secret-test-session-secret", time.Minute)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		m := NewAuthMiddleware(store)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)

		m.Handler(okHandler(nil)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		m := NewAuthMiddleware(store)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")

		m.Handler(okHandler(nil)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		token, _, err := store.Issue(context.Background(), "Admin", session.RoleAdmin)
		require.NoError(t, err)

		var identity *session.Identity
		m := NewAuthMiddleware(store)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		m.Handler(okHandler(&identity)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, identity)
		assert.Equal(t, "Admin", identity.Subject)
		assert.Equal(t, session.RoleAdmin, identity.Role)
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		expiredStore := session.New("test-session-secret-test-session-secret", -time.Minute)
		token, _, err := expiredStore.Issue(context.Background(), "Admin", session.RoleAdmin)
		require.NoError(t, err)

		m := NewAuthMiddleware(expiredStore)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		m.Handler(okHandler(nil)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	withIdentity := func(identity *session.Identity, next http.Handler) (int, *httptest.ResponseRecorder) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
		if identity != nil {
			req = req.WithContext(context.WithValue(req.Context(), IdentityContextKey, identity))
		}
		RequireRole(session.RoleAdmin)(next).ServeHTTP(rec, req)
		return rec.Code, rec
	}

	t.Run("admin passes", func(t *testing.T) {
		code, _ := withIdentity(&session.Identity{Subject: "Admin", Role: session.RoleAdmin}, okHandler(nil))
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("user role is forbidden", func(t *testing.T) {
		code, _ := withIdentity(&session.Identity{Subject: "ind-1", Role: session.RoleUser}, okHandler(nil))
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("no identity is unauthorized", func(t *testing.T) {
		code, _ := withIdentity(nil, okHandler(nil))
		assert.Equal(t, http.StatusUnauthorized, code)
	})
}

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, extractToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, extractToken(req))

	req.Header.Set("Authorization", "Bearer tok-123")
	assert.Equal(t, "tok-123", extractToken(req))
}
