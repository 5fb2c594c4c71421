package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
)

type resyncWorker struct {
	job      service.ClientSyncJob
	interval time.Duration
	logger   *logger.Logger
}

// NewResyncWorker adapts a ClientSyncJob to the Worker lifecycle.
func NewResyncWorker(job service.ClientSyncJob, interval time.Duration, logger *logger.Logger) Worker {
	return &resyncWorker{job: job, interval: interval, logger: logger}
}

func (w *resyncWorker) Run(ctx context.Context) {
	w.logger.Debug().Dur("interval", w.interval).Msg("resync worker started")

	w.job.Start(ctx, w.interval)
	<-ctx.Done()
	w.job.Stop()

	w.logger.Debug().Msg("resync worker stopped")
}
