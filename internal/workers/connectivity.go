// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/benbjohnson/clock"
)

// DefaultProbeInterval is used when the configured interval is not positive.
const DefaultProbeInterval = 15 * time.Second

type connectivityWatcher struct {
	prober      Prober
	reconnector Reconnector
	bus         *events.Bus
	clock       clock.Clock
	interval    time.Duration
	logger      *logger.Logger

	online bool
}

// NewConnectivityWatcher returns a Worker that pings the gateway every
// interval. The watcher starts in the offline state, so the first
// successful probe runs a reconnect pass; after that a pass runs on every
// offline to online transition. Each transition is published as an
// [events.Connectivity].
func NewConnectivityWatcher(prober Prober, reconnector Reconnector, bus *events.Bus, clk clock.Clock, interval time.Duration, logger *logger.Logger) Worker {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &connectivityWatcher{
		prober:      prober,
		reconnector: reconnector,
		bus:         bus,
		clock:       clk,
		interval:    interval,
		logger:      logger,
	}
}

func (w *connectivityWatcher) Run(ctx context.Context) {
	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()

	w.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

func (w *connectivityWatcher) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, w.interval)
	err := w.prober.Ping(probeCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}

	online := err == nil
	if online == w.online {
		return
	}
	w.online = online

	if w.bus != nil {
		w.bus.Publish(events.Connectivity{Online: online})
	}
	if !online {
		w.logger.Warn().Err(err).Msg("gateway unreachable")
		return
	}

	w.logger.Info().Msg("gateway reachable, reconnecting")
	w.reconnector.Reconnect(ctx)
}
