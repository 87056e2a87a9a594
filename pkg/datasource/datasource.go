package datasource

import (
	"context"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
)

// SampleSource produces raw usage rows for the report input CSV
type SampleSource interface {
	RangeSamples(ctx context.Context, window, step time.Duration, namespace string) ([]models.Sample, error)
	IsAvailable(ctx context.Context) bool
	Name() string
}
