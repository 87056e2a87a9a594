package storage

import (
	"context"
	"embed"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store defines the interface for persisting report summaries
type Store interface {
	SaveSummaries(ctx context.Context, summaries []models.ContainerSummary) error
	ListSummaries(ctx context.Context, namespace string, limit int) ([]models.ContainerSummary, error)
	GetRunStats(ctx context.Context, namespace string) (*models.RunStats, error)

	Ping(ctx context.Context) error
	Close() error
}

const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

type Config struct {
	Type string
	Path string
	URL  string
}

// NewStore opens the configured backend and applies its schema
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypePostgres:
		store, err := NewPostgresStore(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case TypeSQLite:
		store, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.Errorf("unknown store type %q", cfg.Type)
	}
}
