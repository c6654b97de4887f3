package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	apperrors "github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/middleware"
	"github.com/childbooklet/booklet-server-go/internal/model"
	"github.com/childbooklet/booklet-server-go/internal/service"
	"github.com/childbooklet/booklet-server-go/internal/session"
)

const (
	identitiesDefaultLimit = 100
	identitiesMaxLimit     = 500
)

// AdminHandler serves the dashboard: login, stats, record administration
// and the read-only identity projection.
type AdminHandler struct {
	authService      *service.AuthService
	childService     *service.ChildService
	identityService  *service.IdentityService
	authMiddleware   func(http.Handler) http.Handler
	loginRateLimiter *middleware.LoginRateLimiter
}

func NewAdminHandler(
	authService *service.AuthService,
	childService *service.ChildService,
	identityService *service.IdentityService,
	authMiddleware func(http.Handler) http.Handler,
	loginRateLimiter *middleware.LoginRateLimiter,
) *AdminHandler {
	return &AdminHandler{
		authService:      authService,
		childService:     childService,
		identityService:  identityService,
		authMiddleware:   authMiddleware,
		loginRateLimiter: loginRateLimiter,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.loginRateLimiter.Handler).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Post("/logout", h.Logout)
		r.Post("/verify-password", h.VerifyPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.authMiddleware)
		r.Use(middleware.RequireRole(session.RoleAdmin))

		r.Get("/stats", h.Stats)
		r.Get("/children", h.ListChildren)
		r.Put("/child/{healthId}", h.UpdateChild)
		r.Delete("/child/{healthId}", h.DeleteChild)

		if h.identityService != nil {
			r.Get("/identities", h.ListIdentities)
			r.Get("/identities/{id}", h.GetIdentity)
		}
	})

	return r
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.childService.GetStats(r.Context()))
}

func (h *AdminHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	page := ParsePagination(r, recordsDefaultLimit, recordsMaxLimit)

	records, err := h.childService.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": records,
		"total":   len(records),
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}

func (h *AdminHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	healthID := chi.URLParam(r, "healthId")

	var update model.RecordUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}

	record, err := h.childService.Update(r.Context(), healthID, update)
	if err != nil {
		writeError(w, err)
		return
	}

	h.auditRecordEvent(r, audit.EventRecordUpdate, healthID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "record": record})
}

func (h *AdminHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	healthID := chi.URLParam(r, "healthId")

	if err := h.childService.Delete(r.Context(), healthID); err != nil {
		writeError(w, err)
		return
	}

	h.auditRecordEvent(r, audit.EventRecordDelete, healthID)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AdminHandler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	page := ParsePagination(r, identitiesDefaultLimit, identitiesMaxLimit)
	writeJSON(w, http.StatusOK, h.identityService.List(r.Context(), page.Limit, page.Offset))
}

func (h *AdminHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	detail, err := h.identityService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *AdminHandler) auditRecordEvent(r *http.Request, event audit.EventType, healthID string) {
	subject := ""
	if identity := middleware.GetIdentity(r.Context()); identity != nil {
		subject = identity.Subject
	}
	audit.LogFromRequest(r, audit.Event{Type: event, Subject: subject, HealthID: healthID})
}
