package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.RowsLoaded.Add(5)
	m.ReportsGenerated.WithLabelValues("default").Inc()
	m.ReportsGenerated.WithLabelValues("default").Inc()
	m.PartitionFailures.WithLabelValues("build").Inc()

	if got := testutil.ToFloat64(m.RowsLoaded); got != 5 {
		t.Errorf("Expected 5 rows loaded, got %v", got)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated.WithLabelValues("default")); got != 2 {
		t.Errorf("Expected 2 reports, got %v", got)
	}
	if got := testutil.ToFloat64(m.PartitionFailures.WithLabelValues("build")); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RowsLoaded.Inc()

	if got := testutil.ToFloat64(b.RowsLoaded); got != 0 {
		t.Errorf("Expected fresh registry to be zero, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RowsLoaded.Add(3)
	end := time.Unix(1700000000, 0)
	m.ObserveRun(end.Add(-2*time.Second), end)

	path := filepath.Join(t.TempDir(), "usage_report.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	for _, want := range []string{
		"usage_report_rows_loaded_total 3",
		"usage_report_run_duration_seconds 2",
		"usage_report_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected %q in textfile:\n%s", want, data)
		}
	}
}
