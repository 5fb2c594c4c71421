package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/internal/tui"
	"github.com/MKhiriev/navdash/internal/workers"
)

type App struct {
	cfg      *config.ClientConfig
	storages *store.ClientStorages
	gateway  adapter.Gateway
	services *service.ClientServices
	tui      *tui.TUI
	logger   *logger.Logger

	unsubscribe func()
}

// NewApp opens the local store, restores the transport cookies and the
// session, and migrates stored snapshots to the current schema.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	gateway, err := adapter.NewHTTPGateway(ctx, cfg.Adapter, storages.KV, logger)
	if err != nil {
		storages.Close()
		return nil, fmt.Errorf("create gateway client: %w", err)
	}

	svcs := service.NewClientServices(storages, gateway, cfg.Workers, nil, logger)

	app := &App{
		cfg:      cfg,
		storages: storages,
		gateway:  gateway,
		services: svcs,
		tui:      tui.New(svcs, logger),
		logger:   logger,
	}

	if err = app.open(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) open(ctx context.Context) error {
	migrated, err := a.services.Cache.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migrate local snapshots: %w", err)
	}
	if migrated > 0 {
		a.logger.Info().Int("migrated", migrated).Msg("local snapshots migrated")
	}

	if err = a.services.Session.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	a.unsubscribe = events.On(a.services.Bus, func(n events.Notice) {
		a.logger.Warn().
			Err(n.Err).
			Str("slice", n.Slice.String()).
			Str("kind", n.Kind.String()).
			Msg("sync notice")
	})
	return nil
}

func (a *App) Services() *service.ClientServices {
	return a.services
}

func (a *App) TUI() *tui.TUI {
	return a.tui
}

// Run starts the background workers and shows the live dashboard until the
// user quits or ctx is done. Pending edits are pushed before it returns.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ws := workers.NewWorkers(
		workers.NewResyncWorker(a.services.SyncJob, a.cfg.Workers.SyncInterval, a.logger),
		workers.NewConnectivityWatcher(a.gateway, a.services.SyncCoordinator, a.services.Bus, nil, a.cfg.Workers.ProbeInterval, a.logger),
	)

	done := make(chan struct{})
	go func() {
		ws.Run(ctx)
		close(done)
	}()

	err := a.tui.Dashboard(ctx)
	cancel()
	<-done

	timeout := a.cfg.Adapter.RequestTimeout
	if timeout <= 0 {
		timeout = config.DefaultAdapterTimeout
	}
	flushCtx, flushCancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer flushCancel()
	return errors.Join(err, a.services.SyncCoordinator.Flush(flushCtx))
}

// Close stops pending debounce timers, waits for in-flight pushes and
// releases the local store.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.services.SyncCoordinator.Close()
	return a.storages.Close()
}
