// Package metrics holds the counters a report run exposes for node-exporter's
// textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is a per-run registry
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded        prometheus.Counter
	Partitions        prometheus.Gauge
	ReportsGenerated  *prometheus.CounterVec
	PartitionFailures *prometheus.CounterVec
	RunDuration       prometheus.Gauge
	LastRun           prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RowsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "usage_report_rows_loaded_total",
			Help: "Rows read from the merged input CSV",
		}),
		Partitions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usage_report_partitions",
			Help: "Distinct (namespace, container) partitions in the last run",
		}),
		ReportsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usage_report_reports_generated_total",
			Help: "Container reports written",
		}, []string{"namespace"}),
		PartitionFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usage_report_partition_failures_total",
			Help: "Partitions skipped because their report failed",
		}, []string{"stage"}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usage_report_run_duration_seconds",
			Help: "Wall time of the last report run",
		}),
		LastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usage_report_last_run_timestamp_seconds",
			Help: "Unix time the last report run finished",
		}),
	}
}

// ObserveRun records the duration and completion time of a run
func (m *Metrics) ObserveRun(start, end time.Time) {
	m.RunDuration.Set(end.Sub(start).Seconds())
	m.LastRun.Set(float64(end.Unix()))
}

// WriteTextfile dumps the registry in text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, "failed to write metrics to %s", path)
	}
	return nil
}
