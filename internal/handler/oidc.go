package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/audit"
	apperrors "github.com/childbooklet/booklet-server-go/internal/errors"
	"github.com/childbooklet/booklet-server-go/internal/oidc"
	"github.com/childbooklet/booklet-server-go/internal/service"
)

// OIDCHandler carries the authorization-code callback for the SPA: the
// browser posts the code here and the server performs the confidential
// client exchange.
type OIDCHandler struct {
	exchangeService *service.ExchangeService
}

func NewOIDCHandler(exchangeService *service.ExchangeService) *OIDCHandler {
	return &OIDCHandler{exchangeService: exchangeService}
}

func (h *OIDCHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/exchange-token", h.ExchangeToken)
	return r
}

type exchangeResponse struct {
	AccessToken   string         `json:"access_token"`
	IDToken       string         `json:"id_token,omitempty"`
	IDTokenClaims map[string]any `json:"id_token_claims,omitempty"`
	UserInfo      map[string]any `json:"userInfo,omitempty"`
	State         string         `json:"state,omitempty"`
}

func (h *OIDCHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "expected JSON"))
		return
	}
	if req.Code == "" {
		writeError(w, apperrors.MissingCode())
		return
	}

	result, err := h.exchangeService.Exchange(r.Context(), req.Code)
	if err != nil {
		h.writeExchangeError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventTokenExchange})
	writeJSON(w, http.StatusOK, exchangeResponse{
		AccessToken:   result.AccessToken,
		IDToken:       result.IDToken,
		IDTokenClaims: result.IDTokenClaims,
		UserInfo:      result.UserInfo,
		State:         req.State,
	})
}

// writeExchangeError maps exchange stages onto the error model: an
// upstream rejection is a 502 carrying the provider's status and body,
// anything before the network call is a server-side failure.
func (h *OIDCHandler) writeExchangeError(w http.ResponseWriter, r *http.Request, err error) {
	var exchErr *oidc.ExchangeError
	if !errors.As(err, &exchErr) {
		log.Error().Err(err).Msg("token exchange failed")
		writeError(w, apperrors.Internal("Token exchange failed"))
		return
	}

	switch exchErr.Stage {
	case oidc.StageAssertion:
		log.Error().Err(exchErr).Msg("client assertion signing failed")
		writeError(w, apperrors.SigningFailed(exchErr))
	case oidc.StageDiscovery:
		log.Error().Err(exchErr).Msg("identity provider discovery failed")
		writeError(w, apperrors.UpstreamUnavailable("identity provider", exchErr))
	default:
		if exchErr.Status != 0 {
			writeError(w, apperrors.ExchangeFailed("Identity provider rejected the authorization code").
				WithDetails(map[string]any{
					"upstreamStatus": exchErr.Status,
					"upstreamBody":   exchErr.Body,
				}))
			return
		}
		log.Error().Err(exchErr).Msg("token exchange failed")
		writeError(w, apperrors.UpstreamUnavailable("identity provider", exchErr))
	}
}
