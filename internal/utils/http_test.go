package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/navdash/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── WriteJSON ────────────────────────────────────────────────────────────────

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		data     any
		status   int
		wantBody string
	}{
		{
			name:     "auth response",
			data:     models.AuthResponse{AccessToken: "abc.def"},
			status:   http.StatusOK,
			wantBody: `{"accessToken":"abc.def"}`,
		},
		{
			name:     "update response",
			data:     models.UpdateResponse{Success: true},
			status:   http.StatusOK,
			wantBody: `{"success":true}`,
		},
		{
			name: "bootstrap with raw and snapshot values",
			data: models.BootstrapResponse{
				models.LinkTreeSlice:    json.RawMessage(`[]`),
				models.PreferencesSlice: json.RawMessage(`{"v":1,"data":{},"updatedAt":7,"dirty":false}`),
			},
			status:   http.StatusOK,
			wantBody: `{"links":[],"preferences":{"v":1,"data":{},"updatedAt":7,"dirty":false}}`,
		},
		{
			name:     "nil",
			data:     nil,
			status:   http.StatusAccepted,
			wantBody: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			n, err := WriteJSON(w, tt.data, tt.status)

			require.NoError(t, err)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, w.Body.Len(), n)
		})
	}
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()

	_, err := WriteJSON(w, make(chan int), http.StatusOK)

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))
}

// ── WriteJSONError ───────────────────────────────────────────────────────────

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSONError(w, "wrong auth code", http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.ErrorResponse{Error: "wrong auth code"}, body)
}
