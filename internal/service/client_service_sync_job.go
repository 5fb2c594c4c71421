package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/benbjohnson/clock"
)

// DefaultSyncInterval is used when the job is started without an interval.
const DefaultSyncInterval = 5 * time.Minute

type clientSyncJob struct {
	coordinator SyncCoordinator
	clock       clock.Clock
	logger      *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewClientSyncJob creates a clientSyncJob that calls coordinator.Resync on a
// ticker. The job is idle until Start is called.
func NewClientSyncJob(coordinator SyncCoordinator, clk clock.Clock, logger *logger.Logger) ClientSyncJob {
	if clk == nil {
		clk = clock.New()
	}
	return &clientSyncJob{coordinator: coordinator, clock: clk, logger: logger}
}

// Start implements ClientSyncJob. It stops any previously running job, then
// launches a background goroutine that calls Resync every interval. The
// goroutine exits when ctx is cancelled or Stop is called.
func (j *clientSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	t := j.clock.Ticker(interval)
	go func() {
		defer j.wg.Done()
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				err := j.coordinator.Resync(jobCtx)
				if err != nil && !errors.Is(err, ErrSyncInProgress) {
					j.logger.Warn().Err(err).Msg("periodic resync failed")
				}
			}
		}
	}()
}

// Stop implements ClientSyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running (no-op in that case).
func (j *clientSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
