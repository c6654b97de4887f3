package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	apperrors "github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/middleware"
)

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeUnauthorized {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventLoginFailure,
				Subject: req.Username,
			})
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_credentials"})
			return
		}
		log.Error().Err(err).Msg("admin login error")
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventLoginSuccess,
		Subject: result.Username,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     result.Token,
		"expiresIn": int(time.Until(result.ExpiresAt).Seconds()),
		"username":  result.Username,
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if err := h.authService.Logout(r.Context(), token); err != nil {
		log.Error().Err(err).Msg("logout failed")
		writeError(w, apperrors.Internal("Logout failed"))
		return
	}

	if identity != nil {
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout, Subject: identity.Subject})
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VerifyPassword re-checks the authenticated admin's password; the UI
// calls this before destructive operations.
func (h *AdminHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		writeError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		writeError(w, apperrors.MissingRequired("password"))
		return
	}

	ok, err := h.authService.VerifyPassword(r.Context(), identity.Subject, req.Password)
	if err != nil {
		log.Error().Err(err).Msg("password verification failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}
