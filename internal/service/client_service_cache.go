package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
)

// localLegacyUpdatedAt is the timestamp given to legacy local values so that
// any genuine remote value wins the first reconciliation.
const localLegacyUpdatedAt = 0

type localCache struct {
	kv     store.KVRepository
	clock  clock.Clock
	logger *logger.Logger

	// mu serialises every read-modify-write of a snapshot key.
	mu sync.Mutex
}

// NewLocalCache creates a LocalCache over kv. A nil clock means the wall
// clock.
func NewLocalCache(kv store.KVRepository, clk clock.Clock, logger *logger.Logger) LocalCache {
	if clk == nil {
		clk = clock.New()
	}
	return &localCache{
		kv:     kv,
		clock:  clk,
		logger: logger,
	}
}

func (c *localCache) Read(ctx context.Context, slice models.Slice) (models.Snapshot, error) {
	if !slice.Valid() {
		return models.Snapshot{}, fmt.Errorf("%w: %q", models.ErrUnknownSlice, slice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.read(ctx, slice)
}

func (c *localCache) read(ctx context.Context, slice models.Slice) (models.Snapshot, error) {
	raw, err := c.kv.Get(ctx, slice.StorageKey())
	if errors.Is(err, store.ErrNotFound) {
		return models.DefaultSnapshot(slice), nil
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("read %s snapshot: %w", slice, err)
	}

	snap, _, err := models.DecodeSnapshot(raw, localLegacyUpdatedAt)
	if err != nil {
		c.logger.Warn().Err(err).Str("slice", slice.String()).Msg("stored snapshot is malformed, using default")
		return models.DefaultSnapshot(slice), nil
	}
	if err = models.ValidateData(slice, snap.Data); err != nil {
		c.logger.Warn().Err(err).Str("slice", slice.String()).Msg("stored data does not match slice, using default")
		return models.DefaultSnapshot(slice), nil
	}

	return snap, nil
}

func (c *localCache) put(ctx context.Context, slice models.Slice, snap models.Snapshot) error {
	raw, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", slice, err)
	}
	if err = c.kv.Put(ctx, slice.StorageKey(), raw); err != nil {
		return fmt.Errorf("write %s snapshot: %w", slice, err)
	}
	return nil
}

func (c *localCache) ReadAll(ctx context.Context) (map[models.Slice]models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[models.Slice]models.Snapshot, len(models.AllSlices()))
	for _, slice := range models.AllSlices() {
		snap, err := c.read(ctx, slice)
		if err != nil {
			return nil, err
		}
		out[slice] = snap
	}
	return out, nil
}

func (c *localCache) Write(ctx context.Context, slice models.Slice, data json.RawMessage, dirty bool) (models.Snapshot, error) {
	if !slice.Valid() {
		return models.Snapshot{}, fmt.Errorf("%w: %q", models.ErrUnknownSlice, slice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, err := c.read(ctx, slice)
	if err != nil {
		return models.Snapshot{}, err
	}

	snap := models.Snapshot{
		Version:   models.SchemaVersion,
		Data:      append(json.RawMessage(nil), data...),
		UpdatedAt: max(c.clock.Now().UnixMilli(), prev.UpdatedAt),
		Dirty:     dirty,
	}
	if err = c.put(ctx, slice, snap); err != nil {
		return models.Snapshot{}, err
	}

	c.logger.Debug().
		Str("slice", slice.String()).
		Int64("updated_at", snap.UpdatedAt).
		Bool("dirty", dirty).
		Msg("snapshot written")
	return snap, nil
}

func (c *localCache) Adopt(ctx context.Context, slice models.Slice, remote models.Snapshot) (models.Snapshot, bool, error) {
	if !slice.Valid() {
		return models.Snapshot{}, false, fmt.Errorf("%w: %q", models.ErrUnknownSlice, slice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	local, err := c.read(ctx, slice)
	if err != nil {
		return models.Snapshot{}, false, err
	}
	if local.Dirty || remote.UpdatedAt <= local.UpdatedAt {
		return local, false, nil
	}

	snap := models.Snapshot{
		Version:   models.SchemaVersion,
		Data:      append(json.RawMessage(nil), remote.Data...),
		UpdatedAt: max(c.clock.Now().UnixMilli(), remote.UpdatedAt, local.UpdatedAt),
		Dirty:     false,
	}
	if err = c.put(ctx, slice, snap); err != nil {
		return models.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (c *localCache) Clean(ctx context.Context, slice models.Slice) error {
	if !slice.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownSlice, slice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.read(ctx, slice)
	if err != nil {
		return err
	}
	if !snap.Dirty {
		return nil
	}
	snap.Dirty = false
	return c.put(ctx, slice, snap)
}

func (c *localCache) CleanIf(ctx context.Context, slice models.Slice, pushed models.Snapshot) (bool, error) {
	if !slice.Valid() {
		return false, fmt.Errorf("%w: %q", models.ErrUnknownSlice, slice)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.read(ctx, slice)
	if err != nil {
		return false, err
	}
	if !snap.SameContent(pushed) {
		return false, nil
	}
	if snap.Dirty {
		snap.Dirty = false
		if err = c.put(ctx, slice, snap); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *localCache) Dirty(ctx context.Context) ([]models.Slice, error) {
	all, err := c.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	var dirty []models.Slice
	for _, slice := range models.AllSlices() {
		if all[slice].Dirty {
			dirty = append(dirty, slice)
		}
	}
	return dirty, nil
}

func (c *localCache) Migrate(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.kv.List(ctx, models.StorageKeyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list stored snapshots: %w", err)
	}

	migrated := 0
	for _, slice := range models.AllSlices() {
		raw, ok := stored[slice.StorageKey()]
		if !ok {
			continue
		}

		snap, legacy, decodeErr := models.DecodeSnapshot(raw, localLegacyUpdatedAt)
		if decodeErr != nil {
			c.logger.Warn().Err(decodeErr).Str("slice", slice.String()).Msg("skipping malformed snapshot during migration")
			continue
		}
		if !legacy && snap.Version == models.SchemaVersion {
			continue
		}
		fromVersion := snap.Version
		if legacy {
			fromVersion = 0
		}

		if err = c.put(ctx, slice, snap); err != nil {
			return migrated, err
		}
		migrated++
		c.logger.Info().
			Str("slice", slice.String()).
			Bool("legacy", legacy).
			Int("from_version", fromVersion).
			Msg("snapshot migrated to current schema")
	}

	return migrated, nil
}
