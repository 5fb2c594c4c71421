package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/handler"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/server"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	ctx := context.Background()
	log := logger.NewLogger("navdash-gateway")

	cfg, err := config.GetStructuredConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().
		Str("address", cfg.Server.HTTPAddress).
		Str("dialect", string(store.DialectFromDSN(cfg.Storage.DB.DSN))).
		Dur("access_ttl", cfg.App.AccessTokenTTL).
		Dur("refresh_ttl", cfg.App.RefreshTokenTTL).
		Msg("received configs")

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	services, err := service.NewServices(ctx, storages, *cfg, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	handlers, err := handler.NewHandlers(services, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
