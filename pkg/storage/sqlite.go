package storage

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file
type SQLiteStore struct {
	*sqlStore
	path string
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	store := &SQLiteStore{
		sqlStore: &sqlStore{db: db, dialect: sqliteDialect},
		path:     path,
	}
	if err := store.migrate(ctx, "migrations/001_sqlite_schema.sql"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}
	return store, nil
}
