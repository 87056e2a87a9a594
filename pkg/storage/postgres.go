package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	*sqlStore
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	store := &PostgresStore{
		sqlStore: &sqlStore{db: db, dialect: postgresDialect},
		dsn:      dsn,
	}
	if err := store.migrate(ctx, "migrations/001_postgres_schema.sql"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to run migrations")
	}

	return store, nil
}
