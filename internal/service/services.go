package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
)

// Services groups the gateway services used by the HTTP handlers.
type Services struct {
	AuthService    AuthService
	DataService    DataService
	AppInfoService AppInfoService
}

// NewServices wires the gateway services and seeds the auth code hash.
func NewServices(ctx context.Context, storages *store.Storages, cfg config.StructuredConfig, buildInfo models.AppBuildInfo, logger *logger.Logger) (*Services, error) {
	clk := clock.New()

	authService, err := NewAuthService(storages.KV, cfg.App, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("create auth service: %w", err)
	}
	if err = authService.EnsureCode(ctx); err != nil {
		return nil, fmt.Errorf("prepare auth code: %w", err)
	}

	appInfoService, err := NewAppInfoService(buildInfo, logger)
	if err != nil {
		return nil, fmt.Errorf("create app info service: %w", err)
	}

	dataService := NewDataValidationService(logger).Wrap(NewDataService(storages.KV, clk, logger))

	return &Services{
		AuthService:    authService,
		DataService:    dataService,
		AppInfoService: appInfoService,
	}, nil
}
