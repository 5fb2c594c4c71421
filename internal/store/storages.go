package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/navdash/internal/config"
	"github.com/MKhiriev/navdash/internal/logger"
)

// Storages groups the gateway storage repositories.
type Storages struct {
	// KV holds slice snapshots and the auth code hash.
	KV KVRepository

	db *DB
}

// NewStorages opens the backend selected by cfg.DB.DSN (PostgreSQL or
// SQLite), migrates it and wires the repositories.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("creating new storages...")

	db, err := Open(ctx, cfg.DB.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("storage connection error: %w", err)
	}

	return &Storages{
		KV: NewKVRepository(db, log),
		db: db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
