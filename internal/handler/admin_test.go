package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/childbooklet/booklet-server-go/internal/middleware"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/service"
	"github.com/childbooklet/booklet-server-go/internal/session"
)

type adminFixture struct {
	handler    *AdminHandler
	store      session.Store
	adminToken string
	userToken  string
}

func newAdminFixture(t *testing.T, childRepo *mockChildRepo, identityRepo *mockIdentityStore) *adminFixture {
	t.Helper()
	store := session.New("test-session-secret-test-session-secret", 30*time.Minute)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	adminRepo := &mockAdminRepo{
		findByUsernameFunc: func(_ context.Context, username string) (*model.AdminUser, error) {
			if username == "Admin" {
				return &model.AdminUser{Username: "Admin", PasswordHash: string(hash), Role: session.RoleAdmin}, nil
			}
			return nil, nil
		},
	}

	var identityService *service.IdentityService
	if identityRepo != nil {
		identityService = service.NewIdentityService(identityRepo)
	}

	authMw := middleware.NewAuthMiddleware(store)
	handler := NewAdminHandler(
		service.NewAuthService(adminRepo, store),
		service.NewChildService(childRepo),
		identityService,
		authMw.Handler,
		middleware.NewLoginRateLimiter(service.NewRateLimiter(nil)),
	)

	adminToken, _, err := store.Issue(context.Background(), "Admin", session.RoleAdmin)
	require.NoError(t, err)
	userToken, _, err := store.Issue(context.Background(), "ind-1", session.RoleUser)
	require.NoError(t, err)

	return &adminFixture{handler: handler, store: store, adminToken: adminToken, userToken: userToken}
}

func (f *adminFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	f.handler.Routes().ServeHTTP(rec, req)
	return rec
}

func TestAdminRouteProtection(t *testing.T) {
	f := newAdminFixture(t, &mockChildRepo{}, nil)

	t.Run("no token is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, "/stats", "", "").Code)
	})

	t.Run("user role is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/stats", f.userToken, "").Code)
	})

	t.Run("admin role passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/stats", f.adminToken, "").Code)
	})
}

func TestAdminStats(t *testing.T) {
	t.Run("reports totals and recent uploads", func(t *testing.T) {
		repo := &mockChildRepo{
			countFunc: func(context.Context) (int64, error) { return 7, nil },
			recentFunc: func(_ context.Context, limit int) ([]model.RecentUpload, error) {
				assert.Equal(t, 5, limit)
				return []model.RecentUpload{{HealthID: "CH001", Name: "Asha"}}, nil
			},
		}
		f := newAdminFixture(t, repo, nil)

		rec := f.do(http.MethodGet, "/stats", f.adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var stats service.Stats
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, int64(7), stats.TotalChildRecords)
		assert.Len(t, stats.RecentUploads, 1)
	})

	t.Run("degrades when the store is down", func(t *testing.T) {
		repo := &mockChildRepo{
			countFunc: func(context.Context) (int64, error) { return 0, fmt.Errorf("down") },
		}
		f := newAdminFixture(t, repo, nil)

		rec := f.do(http.MethodGet, "/stats", f.adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "store_disabled")
	})
}

func TestAdminChildrenCRUD(t *testing.T) {
	t.Run("list pages records", func(t *testing.T) {
		repo := &mockChildRepo{
			findAllFunc: func(_ context.Context, limit, offset int) ([]model.ChildRecord, error) {
				assert.Equal(t, 10, limit)
				assert.Equal(t, 20, offset)
				return []model.ChildRecord{{HealthID: "CH001"}}, nil
			},
		}
		f := newAdminFixture(t, repo, nil)

		rec := f.do(http.MethodGet, "/children?limit=10&offset=20", f.adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"total":1`)
	})

	t.Run("update returns the new record", func(t *testing.T) {
		repo := &mockChildRepo{
			updateFunc: func(_ context.Context, healthID string, update model.RecordUpdate) (*model.ChildRecord, error) {
				require.NotNil(t, update.Name)
				return &model.ChildRecord{HealthID: healthID, Name: *update.Name}, nil
			},
		}
		f := newAdminFixture(t, repo, nil)

		rec := f.do(http.MethodPut, "/child/CH001", f.adminToken, `{"name":"Corrected"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Corrected")
	})

	t.Run("update of unknown record is 404", func(t *testing.T) {
		f := newAdminFixture(t, &mockChildRepo{}, nil)
		rec := f.do(http.MethodPut, "/child/CH404", f.adminToken, `{"name":"X"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete succeeds and missing record is 404", func(t *testing.T) {
		repo := &mockChildRepo{
			deleteFunc: func(_ context.Context, healthID string) (bool, error) {
				return healthID == "CH001", nil
			},
		}
		f := newAdminFixture(t, repo, nil)

		assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, "/child/CH001", f.adminToken, "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/child/CH404", f.adminToken, "").Code)
	})
}

func TestAdminIdentities(t *testing.T) {
	identityJSON := `{"individualId":"123","fullName":[{"language":"eng","value":"Amina"}],"password":"x"}`

	t.Run("routes absent without an identity store", func(t *testing.T) {
		f := newAdminFixture(t, &mockChildRepo{}, nil)
		rec := f.do(http.MethodGet, "/identities", f.adminToken, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list returns summaries", func(t *testing.T) {
		repo := &mockIdentityStore{
			listFunc: func(_ context.Context, limit, offset int) ([]model.IdentityRow, error) {
				return []model.IdentityRow{{IndividualID: "123", IdentityJSON: identityJSON}}, nil
			},
		}
		f := newAdminFixture(t, &mockChildRepo{}, repo)

		rec := f.do(http.MethodGet, "/identities", f.adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Amina")
	})

	t.Run("get sanitizes the document", func(t *testing.T) {
		repo := &mockIdentityStore{
			findFunc: func(_ context.Context, individualID string) (*model.IdentityRow, error) {
				return &model.IdentityRow{IndividualID: individualID, IdentityJSON: identityJSON}, nil
			},
		}
		f := newAdminFixture(t, &mockChildRepo{}, repo)

		rec := f.do(http.MethodGet, "/identities/123", f.adminToken, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("store failure on get is 503", func(t *testing.T) {
		repo := &mockIdentityStore{
			findFunc: func(context.Context, string) (*model.IdentityRow, error) {
				return nil, fmt.Errorf("connection refused")
			},
		}
		f := newAdminFixture(t, &mockChildRepo{}, repo)

		rec := f.do(http.MethodGet, "/identities/123", f.adminToken, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
