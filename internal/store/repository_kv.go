package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/navdash/internal/logger"
)

// kvRepository is the SQL implementation of [KVRepository] over the "kv"
// table. It works unchanged on SQLite and PostgreSQL; only the placeholder
// format differs.
type kvRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewKVRepository constructs a [KVRepository] backed by db.
func NewKVRepository(db *DB, logger *logger.Logger) KVRepository {
	logger.Debug().Str("dialect", string(db.dialect)).Msg("creating kv repository")
	return &kvRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := buildGetQuery(r.db.placeholder(), key)
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Get").Msg("error building query")
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = r.db.withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Get").Str("key", key).Msg("error reading value")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return value, nil
}

func (r *kvRepository) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := buildPutQuery(r.db.placeholder(), key, value, r.now().UnixMilli())
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Put").Msg("error building query")
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Put").Str("key", key).Msg("error writing value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	query, args, err := buildDeleteQuery(r.db.placeholder(), key)
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Delete").Msg("error building query")
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	err = r.db.withRetry(ctx, func() error {
		_, execErr := r.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.Delete").Str("key", key).Msg("error deleting value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *kvRepository) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	query, args, err := buildListQuery(r.db.placeholder(), prefix)
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var result map[string][]byte
	err = r.db.withRetry(ctx, func() error {
		rows, queryErr := r.db.QueryContext(ctx, query, args...)
		if queryErr != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
		}
		defer rows.Close()

		result = make(map[string][]byte)
		for rows.Next() {
			var (
				key   string
				value []byte
			)
			if scanErr := rows.Scan(&key, &value); scanErr != nil {
				return fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
			}
			result[key] = value
		}
		if rowsErr := rows.Err(); rowsErr != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
		}
		return nil
	})
	if err != nil {
		r.logger.Err(err).Str("func", "*kvRepository.List").Str("prefix", prefix).Msg("error listing values")
		return nil, err
	}

	return result, nil
}
