package reporter

import (
	"fmt"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/analyzer"
	"github.com/opscart/k8s-usage-reporter/pkg/chart"
	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"k8s.io/apimachinery/pkg/types"
)

// Report is the chart and summary for one container
type Report struct {
	Key     types.NamespacedName
	Summary *analyzer.Summary
	Figure  *chart.Figure
}

// ReportError marks a partition whose report could not be built. The
// pipeline skips the partition and carries on.
type ReportError struct {
	Key types.NamespacedName
	Err error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("report %s: %v", e.Key, e.Err)
}

func (e *ReportError) Unwrap() error { return e.Err }

// Builder turns partitions into reports
type Builder struct {
	Mode analyzer.SummaryMode
}

// New creates a builder for the given summary mode
func New(mode analyzer.SummaryMode) *Builder {
	if mode == "" {
		mode = analyzer.SummaryLegacy
	}
	return &Builder{Mode: mode}
}

// Build computes the summary and chart of a partition
func (b *Builder) Build(p dataset.Partition) (*Report, error) {
	if p.Len() == 0 {
		return nil, &ReportError{Key: p.Key, Err: fmt.Errorf("empty partition")}
	}

	series, err := analyzer.SeriesFromFrame(p.Rows)
	if err != nil {
		return nil, &ReportError{Key: p.Key, Err: err}
	}

	summary, err := analyzer.Summarize(p.Key, series, b.Mode)
	if err != nil {
		return nil, &ReportError{Key: p.Key, Err: err}
	}

	return &Report{
		Key:     p.Key,
		Summary: summary,
		Figure:  buildFigure(p.Key.Name, series),
	}, nil
}

func buildFigure(container string, s *analyzer.Series) *chart.Figure {
	return chart.StackedLines(
		fmt.Sprintf("Container Resource Usage Report - %s", container),
		s.Labels(),
		chart.Panel{
			Title:  fmt.Sprintf("%s - CPU Usage Metrics", container),
			YTitle: "CPU Usage",
			Lines: []chart.Line{
				{Name: "CPU Usage (Avg)", Values: s.CPUUsage},
				{Name: "CPU Request", Values: s.CPURequest},
				{Name: "CPU limit", Values: s.CPULimit},
			},
		},
		chart.Panel{
			Title:  fmt.Sprintf("%s - Memory Usage Metrics", container),
			YTitle: "Memory Usage (MB)",
			Lines: []chart.Line{
				{Name: "Memory Usage (Avg) MB", Values: analyzer.Scale(s.MemoryUsage, models.BytesPerMB)},
				{Name: "Memory Request MB", Values: analyzer.Scale(s.MemoryRequest, models.BytesPerMB)},
				{Name: "Memory Limit MB", Values: analyzer.Scale(s.MemoryLimit, models.BytesPerMB)},
			},
		},
	)
}

// ContainerSummary flattens the report for the index CSV and the store
func (r *Report) ContainerSummary(runID, reportPath string, createdAt time.Time) models.ContainerSummary {
	s := r.Summary
	out := models.ContainerSummary{
		RunID:           runID,
		Namespace:       r.Key.Namespace,
		Container:       r.Key.Name,
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		SampleCount:     s.SampleCount,
		AvgCPUUsage:     s.AvgCPUUsage,
		CPURequest:      s.CPURequest,
		CPULimit:        s.CPULimit,
		AvgMemoryMB:     s.AvgMemoryMB,
		MemoryRequestMB: s.MemoryRequestMB,
		MemoryLimitMB:   s.MemoryLimitMB,
		CPUPattern:      s.CPUPattern.Type,
		MemoryPattern:   s.MemoryPattern.Type,
		ReportPath:      reportPath,
		CreatedAt:       createdAt,
	}
	if s.CPUUsage != nil {
		out.P95CPUUsage = s.CPUUsage.P95
	}
	if s.MemoryUsageMB != nil {
		out.P95MemoryMB = s.MemoryUsageMB.P95
	}
	return out
}
