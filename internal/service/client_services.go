package service

import (
	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/scheduler"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/internal/token"
	"github.com/benbjohnson/clock"
)

type ClientServices struct {
	Bus             *events.Bus
	Cache           LocalCache
	Session         SessionManager
	SyncCoordinator SyncCoordinator
	SyncJob         ClientSyncJob
}

func NewClientServices(localStore *store.ClientStorages, gateway adapter.Gateway, workers config.ClientWorkers, clk clock.Clock, logger *logger.Logger) *ClientServices {
	if clk == nil {
		clk = clock.New()
	}

	bus := events.NewBus(logger)
	cache := NewLocalCache(localStore.KV, clk, logger)
	session := NewSessionManager(gateway, localStore.KV, bus, clk, token.DefaultAccessTTL, logger)
	debouncer := scheduler.NewDebouncer(clk, workers.DebounceWindow)
	coordinator := NewSyncCoordinator(cache, session, gateway, bus, debouncer, clk, logger)

	return &ClientServices{
		Bus:             bus,
		Cache:           cache,
		Session:         session,
		SyncCoordinator: coordinator,
		SyncJob:         NewClientSyncJob(coordinator, clk, logger),
	}
}
