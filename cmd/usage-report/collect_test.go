package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"go.uber.org/zap"
)

type fakeSource struct {
	available bool
	samples   []models.Sample
	namespace string
}

func (f *fakeSource) RangeSamples(ctx context.Context, window, step time.Duration, namespace string) ([]models.Sample, error) {
	f.namespace = namespace
	return f.samples, nil
}

func (f *fakeSource) IsAvailable(ctx context.Context) bool { return f.available }

func (f *fakeSource) Name() string { return "fake" }

func TestExportSamples(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{
		available: true,
		samples: []models.Sample{
			{IntervalStart: ts, Namespace: "default", ContainerName: "app", CPUUsage: 0.5},
			{IntervalStart: ts, Namespace: "default", ContainerName: "api", CPUUsage: 0.25},
		},
	}
	out := filepath.Join(t.TempDir(), "export.csv")

	n, err := exportSamples(context.Background(), source, time.Hour, time.Minute, "default", out, zap.NewNop())
	if err != nil {
		t.Fatalf("exportSamples failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows, got %d", n)
	}
	if source.namespace != "default" {
		t.Errorf("Expected namespace default, got %q", source.namespace)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != strings.Join(models.Columns, ",") {
		t.Errorf("Unexpected header %q", lines[0])
	}
}

func TestExportSamplesUnavailable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export.csv")

	_, err := exportSamples(context.Background(), &fakeSource{}, time.Hour, time.Minute, "", out, zap.NewNop())
	if err == nil {
		t.Fatal("Expected error for unreachable source")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Errorf("Expected no export file, got %v", statErr)
	}
}
