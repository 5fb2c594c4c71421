package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	authPath      = "/auth"
	bootstrapPath = "/bootstrap"
	updatePath    = "/update"
	healthPath    = "/healthz"
	versionPath   = "/version"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}
	router.Use(middleware.Compress(5, "application/json"))

	// routes without a bearer token; the auth update action checks it itself
	router.Group(func(r chi.Router) {
		r.Get(healthPath, h.healthz)
		r.Get(versionPath, h.getServerVersion)
		r.Post(authPath, h.authAction)
		r.Get(bootstrapPath, h.bootstrap)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post(updatePath, h.update)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))
	router.NotFound(notFound)

	return router
}
