package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
)

// GenerateCSV writes the per-container summary index
func GenerateCSV(summaries []models.ContainerSummary, writer io.Writer) error {
	w := csv.NewWriter(writer)

	header := []string{
		"Namespace",
		"Container",
		"Start Time",
		"End Time",
		"Samples",
		"Avg CPU Usage",
		"CPU Request",
		"CPU Limit",
		"P95 CPU Usage",
		"Avg Memory (MB)",
		"Memory Request (MB)",
		"Memory Limit (MB)",
		"P95 Memory (MB)",
		"CPU Pattern",
		"Memory Pattern",
		"Report",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range summaries {
		row := []string{
			s.Namespace,
			s.Container,
			s.StartTime,
			s.EndTime,
			strconv.Itoa(s.SampleCount),
			formatFixed(s.AvgCPUUsage, 6),
			formatFixed(s.CPURequest, 6),
			formatFixed(s.CPULimit, 6),
			formatFixed(s.P95CPUUsage, 6),
			formatFixed(s.AvgMemoryMB, 2),
			formatFixed(s.MemoryRequestMB, 2),
			formatFixed(s.MemoryLimitMB, 2),
			formatFixed(s.P95MemoryMB, 2),
			s.CPUPattern,
			s.MemoryPattern,
			s.ReportPath,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
