package http

import (
	"time"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/utils"
)

type Handler struct {
	services *service.Services

	// secureCookies sets the Secure attribute on the refresh cookie.
	secureCookies  bool
	requestTimeout time.Duration

	traceIDs *utils.UUIDGenerator
	logger   *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		secureCookies:  cfg.SecureCookies,
		requestTimeout: cfg.RequestTimeout,
		traceIDs:       utils.NewUUIDGenerator(),
		logger:         logger,
	}
}
