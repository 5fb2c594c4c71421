// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/mock"
	"github.com/MKhiriev/navdash/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, serverURL string, kv *mock.MemoryKV) *httpGateway {
	t.Helper()
	if kv == nil {
		kv = mock.NewMemoryKV()
	}
	cfg := config.ClientAdapter{HTTPAddress: serverURL, RequestTimeout: 2 * time.Second}

	g, err := NewHTTPGateway(context.Background(), cfg, kv, logger.Nop())
	require.NoError(t, err)
	return g.(*httpGateway)
}

func decodeAuthRequest(t *testing.T, r *http.Request) models.AuthRequest {
	t.Helper()
	var req models.AuthRequest
	require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
	return req
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ── Base URL ────────────────────────────────────────────────────────────────

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "localhost:8080", want: "http://localhost:8080"},
		{in: "https://dash.example.com/", want: "https://dash.example.com"},
		{in: "  http://127.0.0.1:9000/api/ ", want: "http://127.0.0.1:9000/api"},
		{in: "", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPGateway_InvalidAddress(t *testing.T) {
	_, err := NewHTTPGateway(context.Background(), config.ClientAdapter{}, mock.NewMemoryKV(), logger.Nop())
	assert.Error(t, err)
}

// ── Login ───────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth", r.URL.Path)

		req := decodeAuthRequest(t, r)
		assert.Equal(t, models.AuthLogin, req.Action)
		assert.Equal(t, "1234", req.Code)

		writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "access-token", Success: true})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	token, err := g.Login(context.Background(), "1234")

	require.NoError(t, err)
	assert.Equal(t, "access-token", token)
}

func TestLogin_WrongCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("invalid code"))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	_, err := g.Login(context.Background(), "0000")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.AuthResponse{Success: true})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	_, err := g.Login(context.Background(), "1234")

	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestLogin_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := newTestGateway(t, url, nil)
	_, err := g.Login(context.Background(), "1234")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

// ── Refresh cookie ──────────────────────────────────────────────────────────

func TestRefresh_UsesPersistedCookie(t *testing.T) {
	var refreshCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeAuthRequest(t, r)
		switch req.Action {
		case models.AuthLogin:
			http.SetCookie(w, &http.Cookie{
				Name:     "navdash_refresh",
				Value:    "refresh-1",
				Path:     "/auth",
				MaxAge:   3600,
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
			writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "a1", Success: true})
		case models.AuthRefresh:
			c, err := r.Cookie("navdash_refresh")
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			refreshCookie = c.Value
			writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "a2", Success: true})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	kv := mock.NewMemoryKV()
	first := newTestGateway(t, srv.URL, kv)
	_, err := first.Login(context.Background(), "1234")
	require.NoError(t, err)

	_, stored := kv.Raw(models.TransportStorageKey)
	require.True(t, stored, "cookie jar must be persisted after login")

	// a fresh gateway over the same store simulates a process restart
	second := newTestGateway(t, srv.URL, kv)
	token, err := second.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "a2", token)
	assert.Equal(t, "refresh-1", refreshCookie)
}

func TestRefresh_NoCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("navdash_refresh"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "a", Success: true})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	_, err := g.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCookieJar_ExpiredCookieNotRestored(t *testing.T) {
	kv := mock.NewMemoryKV()
	raw, err := json.Marshal([]persistedCookie{{
		Name:    "navdash_refresh",
		Value:   "old",
		Path:    "/auth",
		Expires: time.Now().Add(-time.Hour),
	}})
	require.NoError(t, err)
	kv.Seed(models.TransportStorageKey, raw)

	var sawCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("navdash_refresh")
		sawCookie = err == nil
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, kv)
	_, _ = g.Refresh(context.Background())

	assert.False(t, sawCookie)
}

func TestCookieJar_MalformedStoredValueIgnored(t *testing.T) {
	kv := mock.NewMemoryKV()
	kv.Seed(models.TransportStorageKey, []byte("{not json"))

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	g := newTestGateway(t, srv.URL, kv)
	assert.NotNil(t, g)
}

// ── Logout ──────────────────────────────────────────────────────────────────

func TestLogout_ClearsJarEvenOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeAuthRequest(t, r)
		if req.Action == models.AuthLogin {
			http.SetCookie(w, &http.Cookie{Name: "navdash_refresh", Value: "r", Path: "/auth", MaxAge: 60})
			writeJSON(w, http.StatusOK, models.AuthResponse{AccessToken: "a", Success: true})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	kv := mock.NewMemoryKV()
	g := newTestGateway(t, srv.URL, kv)
	_, err := g.Login(context.Background(), "1234")
	require.NoError(t, err)

	err = g.Logout(context.Background())
	assert.ErrorIs(t, err, ErrInternalServerError)

	_, stored := kv.Raw(models.TransportStorageKey)
	assert.False(t, stored)
}

// ── ChangeCode ──────────────────────────────────────────────────────────────

func TestChangeCode_SendsBearerAndCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		req := decodeAuthRequest(t, r)
		assert.Equal(t, models.AuthUpdate, req.Action)
		assert.Equal(t, "old", req.CurrentCode)
		assert.Equal(t, "new", req.NewCode)
		writeJSON(w, http.StatusOK, models.AuthResponse{Success: true})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	require.NoError(t, g.ChangeCode(context.Background(), "tok", "old", "new"))
}

func TestChangeCode_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	err := g.ChangeCode(context.Background(), "tok", "bad", "new")
	assert.ErrorIs(t, err, ErrForbidden)
}

// ── Bootstrap ───────────────────────────────────────────────────────────────

func TestBootstrap_PartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bootstrap", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"links":{"v":1,"data":[],"updatedAt":10,"dirty":false}}`))
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	got, err := g.Bootstrap(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Contains(t, got, models.LinkTreeSlice)
	assert.NotContains(t, got, models.BackgroundSlice)
}

func TestBootstrap_BadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	_, err := g.Bootstrap(context.Background())
	assert.ErrorIs(t, err, ErrBadGateway)
}

// ── Update ──────────────────────────────────────────────────────────────────

func TestUpdate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/update", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req models.UpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, models.PreferencesSlice, req.Type)
		assert.Equal(t, int64(42), req.UpdatedAt)
		assert.JSONEq(t, `{"theme":"dark"}`, string(req.Data))

		writeJSON(w, http.StatusOK, models.UpdateResponse{Success: true})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	err := g.Update(context.Background(), "tok", models.UpdateRequest{
		Type:      models.PreferencesSlice,
		Data:      json.RawMessage(`{"theme":"dark"}`),
		UpdatedAt: 42,
	})
	require.NoError(t, err)
}

func TestUpdate_SuccessFlagMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.UpdateResponse{})
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	err := g.Update(context.Background(), "tok", models.UpdateRequest{Type: models.LinkTreeSlice, Data: json.RawMessage(`[]`)})
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestUpdate_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrInternalServerError},
		{http.StatusBadGateway, ErrBadGateway},
		{http.StatusGatewayTimeout, ErrBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			g := newTestGateway(t, srv.URL, nil)
			err := g.Update(context.Background(), "tok", models.UpdateRequest{Type: models.LinkTreeSlice, Data: json.RawMessage(`[]`)})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdate_UnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	err := g.Update(context.Background(), "tok", models.UpdateRequest{Type: models.LinkTreeSlice, Data: json.RawMessage(`[]`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "418")
}

// ── Ping ────────────────────────────────────────────────────────────────────

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	g := newTestGateway(t, srv.URL, nil)
	assert.NoError(t, g.Ping(context.Background()))
}

func TestPing_SendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "navdash/1.4.0", r.UserAgent())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.ClientAdapter{
		HTTPAddress:    srv.URL,
		RequestTimeout: 2 * time.Second,
		UserAgent:      models.NewAppBuildInfo("1.4.0", "", "").UserAgent(),
	}
	g, err := NewHTTPGateway(context.Background(), cfg, mock.NewMemoryKV(), logger.Nop())
	require.NoError(t, err)

	assert.NoError(t, g.Ping(context.Background()))
}
