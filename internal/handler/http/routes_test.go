package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/navdash/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestInit_RegistersRoutes(t *testing.T) {
	f := newHandlerFixture(t)
	router := f.handler.Init()

	want := map[string][]string{
		authPath:      {http.MethodPost},
		bootstrapPath: {http.MethodGet},
		updatePath:    {http.MethodPost},
		healthPath:    {http.MethodGet},
		versionPath:   {http.MethodGet},
	}

	got := map[string][]string{}
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		got[route] = append(got[route], method)
		return nil
	})
	require.NoError(t, err)

	for path, methods := range want {
		assert.ElementsMatch(t, methods, got[path], path)
	}
}

func TestInit_WrongMethodIs405(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodGet, authPath, "", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestInit_TraceIDOnEveryResponse(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodGet, "/nope", "", nil)

	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
}

func TestInit_CompressesJSON(t *testing.T) {
	f := newHandlerFixture(t)

	rr := f.do(http.MethodGet, "/nope", "", http.Header{"Accept-Encoding": []string{"gzip"}})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
}

func TestInit_RecoversFromPanic(t *testing.T) {
	f := newHandlerFixture(t)
	f.data.EXPECT().Bootstrap(gomock.Any()).DoAndReturn(func(context.Context) (models.BootstrapResponse, error) {
		panic("boom")
	})

	rr := f.do(http.MethodGet, bootstrapPath, "", nil)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestInit_WithRequestTimeout(t *testing.T) {
	f := newHandlerFixture(t)
	f.handler.requestTimeout = time.Second
	f.router = f.handler.Init()

	rr := f.do(http.MethodGet, healthPath, "", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
}
