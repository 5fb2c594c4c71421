package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/utils"
	"github.com/MKhiriev/navdash/models"
)

const refreshCookieName = "navdash_refresh"

// authAction serves POST /auth. The body selects one of four actions:
//
//   - login: checks the code, returns an access token and sets the refresh
//     cookie.
//   - refresh: exchanges the refresh cookie for a new access token and
//     rotates the cookie.
//   - logout: clears the refresh cookie. It never fails.
//   - update: rotates the auth code. Requires a bearer access token.
func (h *Handler) authAction(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Str("func", "*Handler.authAction").Msg("Invalid JSON was passed")
		utils.WriteJSONError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case models.AuthLogin:
		h.login(w, r, req)
	case models.AuthRefresh:
		h.refresh(w, r)
	case models.AuthLogout:
		h.logout(w, r)
	case models.AuthUpdate:
		h.changeCode(w, r, req)
	default:
		log.Error().Str("action", string(req.Action)).Msg("unknown auth action")
		writeError(w, fmt.Errorf("%w: %q", ErrUnknownAuthAction, req.Action))
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, req models.AuthRequest) {
	log := logger.FromRequest(r)

	pair, err := h.services.AuthService.Login(r.Context(), req.Code)
	if err != nil {
		log.Err(err).Msg("login failed")
		writeError(w, err)
		return
	}

	log.Info().Msg("logged in")
	h.setRefreshCookie(w, pair)
	utils.WriteJSON(w, models.AuthResponse{AccessToken: pair.AccessToken, Success: true}, http.StatusOK)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		log.Debug().Msg("refresh without cookie")
		writeError(w, ErrNoRefreshCookie)
		return
	}

	pair, err := h.services.AuthService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		log.Err(err).Msg("refresh rejected")
		if errors.Is(err, service.ErrTokenIsExpiredOrInvalid) {
			h.clearRefreshCookie(w)
		}
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, pair)
	utils.WriteJSON(w, models.AuthResponse{AccessToken: pair.AccessToken, Success: true}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	logger.FromRequest(r).Info().Msg("logged out")

	h.clearRefreshCookie(w)
	utils.WriteJSON(w, models.StatusResponse{Success: true}, http.StatusOK)
}

func (h *Handler) changeCode(w http.ResponseWriter, r *http.Request, req models.AuthRequest) {
	log := logger.FromRequest(r)

	if _, err := h.authenticate(r); err != nil {
		log.Err(err).Msg("code change without valid bearer token")
		writeError(w, err)
		return
	}

	err := h.services.AuthService.ChangeCode(r.Context(), req.CurrentCode, req.NewCode)
	if err != nil {
		log.Err(err).Msg("code change failed")
		// the caller holds a valid session, so a wrong current code is a
		// permission problem rather than an authentication one
		if errors.Is(err, service.ErrWrongCode) {
			utils.WriteJSONError(w, err.Error(), http.StatusForbidden)
			return
		}
		writeError(w, err)
		return
	}

	utils.WriteJSON(w, models.StatusResponse{Success: true}, http.StatusOK)
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     authPath,
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     authPath,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
