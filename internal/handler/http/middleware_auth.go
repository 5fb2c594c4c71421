package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/utils"
	"github.com/MKhiriev/navdash/models"
)

const bearerScheme = "Bearer"

// auth is an HTTP middleware that enforces bearer authentication.
//
// It validates the access token from the "Authorization" header via
// [service.AuthService.ParseAccessToken] and, on success, stores the token
// id in the request context under [utils.TokenIDCtxKey]. Any failure is
// answered with 401 Unauthorized.
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		claims, err := h.authenticate(r)
		if err != nil {
			log.Err(err).Msg("bearer authentication failed")
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), utils.TokenIDCtxKey, claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) authenticate(r *http.Request) (models.TokenClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return models.TokenClaims{}, ErrEmptyAuthorizationHeader
	}

	tokenString, err := getTokenFromAuthHeader(authHeader)
	if err != nil {
		return models.TokenClaims{}, err
	}

	return h.services.AuthService.ParseAccessToken(r.Context(), tokenString)
}

// getTokenFromAuthHeader extracts the token from a raw "Authorization" value
// of the form:
//
//	Authorization: Bearer <token>
//
// The scheme is matched case-insensitively.
func getTokenFromAuthHeader(authHeader string) (string, error) {
	scheme, tokenString, found := strings.Cut(strings.TrimLeft(authHeader, " "), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", ErrInvalidAuthorizationHeader
	}

	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrEmptyToken
	}

	return tokenString, nil
}
