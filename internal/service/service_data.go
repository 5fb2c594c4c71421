package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
	"github.com/benbjohnson/clock"
)

type dataService struct {
	kv    store.KVRepository
	clock clock.Clock

	logger *logger.Logger
}

// NewDataService creates the gateway DataService over kv.
func NewDataService(kv store.KVRepository, clk clock.Clock, logger *logger.Logger) DataService {
	if clk == nil {
		clk = clock.New()
	}
	return &dataService{
		kv:     kv,
		clock:  clk,
		logger: logger,
	}
}

// Bootstrap reads every slice key. Stored values are returned verbatim, so a
// value seeded in legacy raw form reaches the client unwrapped.
func (s *dataService) Bootstrap(ctx context.Context) (models.BootstrapResponse, error) {
	log := logger.FromContext(ctx)

	out := make(models.BootstrapResponse, len(models.AllSlices()))
	for _, slice := range models.AllSlices() {
		raw, err := s.kv.Get(ctx, slice.StorageKey())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Err(err).Str("slice", slice.String()).Msg("error reading slice for bootstrap")
			return nil, fmt.Errorf("read %s: %w", slice, err)
		}
		out[slice] = raw
	}

	return out, nil
}

// Update stores req.Data as a clean snapshot. The client's updatedAt is kept
// when given so the next bootstrap does not look newer than the pushed copy;
// otherwise the gateway clock stamps it.
func (s *dataService) Update(ctx context.Context, req models.UpdateRequest) error {
	updatedAt := req.UpdatedAt
	if updatedAt <= 0 {
		updatedAt = s.clock.Now().UnixMilli()
	}

	snap := models.Snapshot{
		Version:   models.SchemaVersion,
		Data:      req.Data,
		UpdatedAt: updatedAt,
	}
	raw, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode %s snapshot: %w", req.Type, err)
	}

	if err = s.kv.Put(ctx, req.Type.StorageKey(), raw); err != nil {
		logger.FromContext(ctx).Err(err).Str("slice", req.Type.String()).Msg("error storing slice")
		return fmt.Errorf("store %s: %w", req.Type, err)
	}

	s.logger.Debug().Str("slice", req.Type.String()).Int64("updated_at", updatedAt).Msg("slice stored")
	return nil
}
