package store

import (
	sq "github.com/Masterminds/squirrel"
)

const kvTable = "kv"

// upsertSuffix is understood by both PostgreSQL and SQLite (3.24+).
const upsertSuffix = "ON CONFLICT (name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at"

func buildGetQuery(ph sq.PlaceholderFormat, key string) (string, []any, error) {
	return sq.Select("payload").
		From(kvTable).
		Where(sq.Eq{"name": key}).
		PlaceholderFormat(ph).
		ToSql()
}

func buildPutQuery(ph sq.PlaceholderFormat, key string, value []byte, updatedAtMillis int64) (string, []any, error) {
	return sq.Insert(kvTable).
		Columns("name", "payload", "updated_at").
		Values(key, string(value), updatedAtMillis).
		Suffix(upsertSuffix).
		PlaceholderFormat(ph).
		ToSql()
}

func buildDeleteQuery(ph sq.PlaceholderFormat, key string) (string, []any, error) {
	return sq.Delete(kvTable).
		Where(sq.Eq{"name": key}).
		PlaceholderFormat(ph).
		ToSql()
}

// buildListQuery matches the prefix with substr rather than LIKE so that "_"
// and "%" in names are not treated as wildcards.
func buildListQuery(ph sq.PlaceholderFormat, prefix string) (string, []any, error) {
	query := sq.Select("name", "payload").
		From(kvTable).
		OrderBy("name")
	if prefix != "" {
		query = query.Where(sq.Expr("substr(name, 1, ?) = ?", len(prefix), prefix))
	}
	return query.PlaceholderFormat(ph).ToSql()
}
