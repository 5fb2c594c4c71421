package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MKhiriev/navdash/internal/adapter"
	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/scheduler"
	"github.com/MKhiriev/navdash/internal/validators"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
)

// remoteLegacyUpdatedAt is the timestamp given to remote values that are not
// wrapped in a snapshot. It beats a defaulted local snapshot (0) and loses to
// any real local edit.
const remoteLegacyUpdatedAt = 1

// saveFields are checked on every new local edit, including imports.
var saveFields = []string{validators.FieldType, validators.FieldData, validators.FieldShape, validators.FieldSiblingIDs}

type syncCoordinator struct {
	cache     LocalCache
	session   SessionManager
	gateway   adapter.Gateway
	bus       *events.Bus
	debouncer *scheduler.Debouncer
	validator validators.Validator
	clock     clock.Clock
	logger    *logger.Logger

	// inFlight guards a pull+push pass so reconnect and manual resync never
	// run at the same time.
	inFlight atomic.Bool
	// pushMu serialises pushes of the same slice. The map is never mutated.
	pushMu map[models.Slice]*sync.Mutex

	baseCtx context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	closed  bool
	wg      sync.WaitGroup
}

// NewSyncCoordinator wires the coordinator and registers a login hook on
// session that resyncs when local edits are pending.
func NewSyncCoordinator(
	cache LocalCache,
	session SessionManager,
	gateway adapter.Gateway,
	bus *events.Bus,
	debouncer *scheduler.Debouncer,
	clk clock.Clock,
	logger *logger.Logger,
) SyncCoordinator {
	if clk == nil {
		clk = clock.New()
	}
	if debouncer == nil {
		debouncer = scheduler.NewDebouncer(clk, scheduler.DefaultWindow)
	}
	if bus == nil {
		bus = events.NewBus(logger)
	}

	pushMu := make(map[models.Slice]*sync.Mutex, len(models.AllSlices()))
	for _, slice := range models.AllSlices() {
		pushMu[slice] = &sync.Mutex{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &syncCoordinator{
		cache:     cache,
		session:   session,
		gateway:   gateway,
		bus:       bus,
		debouncer: debouncer,
		validator: validators.NewSliceValidator(),
		clock:     clk,
		logger:    logger,
		pushMu:    pushMu,
		baseCtx:   ctx,
		cancel:    cancel,
	}
	session.OnLogin(c.resyncIfPending)
	return c
}

func (c *syncCoordinator) Load(ctx context.Context) (map[models.Slice]models.Snapshot, error) {
	snaps, err := c.cache.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load local snapshots: %w", err)
	}
	return snaps, nil
}

func (c *syncCoordinator) Save(ctx context.Context, slice models.Slice, data json.RawMessage) (models.Snapshot, error) {
	if c.isClosed() {
		return models.Snapshot{}, ErrCoordinatorClosed
	}

	req := models.UpdateRequest{Type: slice, Data: data}
	if err := c.validator.Validate(ctx, req, saveFields...); err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	snap, err := c.cache.Write(ctx, slice, data, true)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("commit %s locally: %w", slice, err)
	}

	c.bus.Publish(events.SliceChanged{Slice: slice, Snapshot: snap})
	c.bus.Publish(events.SyncStatus{Slice: slice, Pending: true})

	c.debouncer.Schedule(slice.String(), func() {
		c.debouncedPush(slice)
	})
	return snap, nil
}

func (c *syncCoordinator) debouncedPush(slice models.Slice) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	_ = c.push(c.baseCtx, slice)
}

func (c *syncCoordinator) Resync(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer c.inFlight.Store(false)

	return c.pass(ctx)
}

func (c *syncCoordinator) Reconnect(ctx context.Context) {
	err := c.Resync(ctx)
	switch {
	case err == nil:
		c.logger.Debug().Msg("reconnect sync finished")
	case errors.Is(err, ErrSyncInProgress):
		c.logger.Debug().Msg("reconnect skipped, sync already running")
	default:
		c.logger.Warn().Err(err).Msg("reconnect sync finished with errors")
	}
}

func (c *syncCoordinator) resyncIfPending(ctx context.Context) {
	dirty, err := c.cache.Dirty(ctx)
	if err != nil {
		c.logger.Err(err).Str("func", "*syncCoordinator.resyncIfPending").Msg("error reading dirty slices")
		return
	}
	if len(dirty) == 0 {
		return
	}
	c.Reconnect(ctx)
}

// pass pulls the remote snapshot, reconciles every slice and pushes what is
// still dirty.
func (c *syncCoordinator) pass(ctx context.Context) error {
	var errs []error

	remote, err := c.gateway.Bootstrap(ctx)
	if err != nil {
		// without a pull there is nothing to reconcile, but pending edits
		// still go out
		c.notify(events.Recoverable, "", err)
		errs = append(errs, fmt.Errorf("bootstrap: %w", err))
	} else {
		for _, slice := range models.AllSlices() {
			if err = c.reconcile(ctx, slice, remote[slice]); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if err = c.pushDirty(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// reconcile applies the per-slice rule: a dirty local value always wins,
// otherwise the remote value is adopted if it is newer.
func (c *syncCoordinator) reconcile(ctx context.Context, slice models.Slice, raw json.RawMessage) error {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	remote, legacy, err := models.DecodeSnapshot(raw, remoteLegacyUpdatedAt)
	if err != nil {
		c.logger.Warn().Err(err).Str("slice", slice.String()).Msg("ignoring malformed remote value")
		return nil
	}
	if err = models.ValidateData(slice, remote.Data); err != nil {
		c.logger.Warn().Err(err).Str("slice", slice.String()).Msg("ignoring remote value of wrong shape")
		return nil
	}

	snap, adopted, err := c.cache.Adopt(ctx, slice, remote)
	if err != nil {
		c.notify(events.Recoverable, slice, err)
		return fmt.Errorf("reconcile %s: %w", slice, err)
	}
	if !adopted {
		return nil
	}

	c.logger.Info().
		Str("slice", slice.String()).
		Int64("remote_updated_at", remote.UpdatedAt).
		Bool("legacy", legacy).
		Msg("adopted remote value")
	c.bus.Publish(events.SliceChanged{Slice: slice, Snapshot: snap})
	return nil
}

func (c *syncCoordinator) pushDirty(ctx context.Context) error {
	dirty, err := c.cache.Dirty(ctx)
	if err != nil {
		c.notify(events.Recoverable, "", err)
		return fmt.Errorf("list dirty slices: %w", err)
	}

	var errs []error
	for _, slice := range dirty {
		// an immediate push supersedes the pending debounced one
		c.debouncer.Cancel(slice.String())
		if err = c.push(ctx, slice); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// push sends the current local value of slice. The slice stays dirty on any
// failure; only a successful, still-current update clears it.
func (c *syncCoordinator) push(ctx context.Context, slice models.Slice) error {
	mu := c.pushMu[slice]
	mu.Lock()
	defer mu.Unlock()

	snap, err := c.cache.Read(ctx, slice)
	if err != nil {
		c.notify(events.Recoverable, slice, err)
		return fmt.Errorf("read %s for push: %w", slice, err)
	}
	if !snap.Dirty {
		return nil
	}

	tok, ok := c.session.EnsureToken(ctx)
	if !ok {
		c.logger.Debug().Str("slice", slice.String()).Msg("no session, keeping edit local")
		return nil
	}

	req := models.UpdateRequest{Type: slice, Data: snap.Data, UpdatedAt: snap.UpdatedAt}
	err = c.gateway.Update(ctx, tok, req)
	if errors.Is(err, adapter.ErrUnauthorized) {
		// one silent refresh and one retry, never more
		c.session.Invalidate()
		if tok, ok = c.session.EnsureToken(ctx); !ok {
			err = fmt.Errorf("%w: %w", ErrAuthExpired, err)
		} else {
			err = c.gateway.Update(ctx, tok, req)
		}
	}

	if err != nil {
		err = mapPushError(err)
		c.notify(noticeKind(err), slice, err)
		return fmt.Errorf("push %s: %w", slice, err)
	}

	cleaned, err := c.cache.CleanIf(ctx, slice, snap)
	if err != nil {
		c.notify(events.Recoverable, slice, err)
		return fmt.Errorf("clean %s: %w", slice, err)
	}
	if !cleaned {
		c.logger.Debug().Str("slice", slice.String()).Msg("newer local write since push, staying dirty")
		return nil
	}

	c.logger.Info().Str("slice", slice.String()).Int64("updated_at", snap.UpdatedAt).Msg("slice pushed")
	c.bus.Publish(events.SyncStatus{Slice: slice, Pending: false})
	return nil
}

func (c *syncCoordinator) notify(kind events.NoticeKind, slice models.Slice, err error) {
	c.logger.Warn().Err(err).Str("slice", slice.String()).Str("kind", kind.String()).Msg("sync notice")
	c.bus.Publish(events.Notice{Kind: kind, Slice: slice, Err: err})
}

func (c *syncCoordinator) Flush(ctx context.Context) error {
	canceled := c.debouncer.CancelAll()
	if len(canceled) > 0 {
		c.logger.Debug().Strs("slices", canceled).Msg("flushing debounced pushes")
	}
	return c.pushDirty(ctx)
}

func (c *syncCoordinator) Pending(ctx context.Context) ([]models.Slice, error) {
	return c.cache.Dirty(ctx)
}

func (c *syncCoordinator) Export(ctx context.Context) (models.Backup, error) {
	snaps, err := c.cache.ReadAll(ctx)
	if err != nil {
		return models.Backup{}, fmt.Errorf("export: %w", err)
	}
	for slice, snap := range snaps {
		snap.Version = models.SchemaVersion
		snaps[slice] = snap
	}

	return models.Backup{
		Version:    models.BackupFormatVersion,
		ExportedAt: c.clock.Now().UTC(),
		Slices:     snaps,
	}, nil
}

func (c *syncCoordinator) Import(ctx context.Context, backup models.Backup) error {
	if backup.Version != models.BackupFormatVersion {
		return fmt.Errorf("%w: %d", models.ErrUnsupportedBackup, backup.Version)
	}

	for slice, snap := range backup.Slices {
		req := models.UpdateRequest{Type: slice, Data: snap.Data}
		if err := c.validator.Validate(ctx, req, saveFields...); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDataProvided, slice, err)
		}
	}

	for _, slice := range models.AllSlices() {
		snap, ok := backup.Slices[slice]
		if !ok {
			continue
		}
		if _, err := c.Save(ctx, slice, snap.Data); err != nil {
			return fmt.Errorf("import %s: %w", slice, err)
		}
	}
	return nil
}

func (c *syncCoordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *syncCoordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
	c.wg.Wait()
}
