package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/migrations"
)

// Dialect identifies the SQL backend behind a [DB].
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// retry schedule for operations classified as [Retryable].
var retryDelays = []time.Duration{50 * time.Millisecond, 150 * time.Millisecond, 400 * time.Millisecond}

type DB struct {
	*sql.DB
	dialect            Dialect
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// DialectFromDSN picks the backend from the DSN form.
func DialectFromDSN(dsn string) Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

// Open connects to the backend selected by dsn and applies migrations.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	if dsn == "" {
		return nil, ErrUnsupportedDSN
	}

	var (
		db  *DB
		err error
	)
	switch DialectFromDSN(dsn) {
	case DialectPostgres:
		db, err = NewConnectPostgres(ctx, dsn, log)
	default:
		db, err = NewConnectSQLite(ctx, dsn, log)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

func (db *DB) Migrate(ctx context.Context) error {
	gooseDialect := "sqlite3"
	if db.dialect == DialectPostgres {
		gooseDialect = "pgx"
	}
	return migrations.Migrate(ctx, db.DB, gooseDialect)
}

// Dialect returns the backend of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

func (db *DB) placeholder() sq.PlaceholderFormat {
	if db.dialect == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// withRetry runs op and repeats it while the classifier reports the failure
// as retryable and the context is alive.
func (db *DB) withRetry(ctx context.Context, op func() error) error {
	err := op()
	for _, delay := range retryDelays {
		if err == nil || db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}

		db.logger.Warn().Err(err).Str("func", "*DB.withRetry").Dur("delay", delay).Msg("retrying database operation")
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		err = op()
	}
	return err
}
