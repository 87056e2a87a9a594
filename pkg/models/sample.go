package models

import (
	"math"
	"strconv"
	"time"
)

// BytesPerMB converts memory byte values into the MB figures shown in reports.
const BytesPerMB = 1024 * 1024

// Input CSV columns
const (
	ColumnIntervalStart = "interval_start"
	ColumnNamespace     = "namespace"
	ColumnContainerName = "container_name"
	ColumnCPUUsage      = "cpu_usage_container_avg"
	ColumnCPURequest    = "cpu_request_container_avg"
	ColumnCPULimit      = "cpu_limit_container_avg"
	ColumnMemoryUsage   = "memory_usage_container_avg"
	ColumnMemoryRequest = "memory_request_container_avg"
	ColumnMemoryLimit   = "memory_limit_container_avg"
)

// Columns lists the input header in canonical order
var Columns = []string{
	ColumnIntervalStart,
	ColumnNamespace,
	ColumnContainerName,
	ColumnCPUUsage,
	ColumnCPURequest,
	ColumnCPULimit,
	ColumnMemoryUsage,
	ColumnMemoryRequest,
	ColumnMemoryLimit,
}

// Sample represents one usage row for a container
type Sample struct {
	IntervalStart time.Time
	Namespace     string
	ContainerName string

	// CPU in cores
	CPUUsage   float64
	CPURequest float64
	CPULimit   float64

	// Memory in bytes
	MemoryUsage   float64
	MemoryRequest float64
	MemoryLimit   float64
}

// Record renders the sample as a CSV row matching Columns
func (s Sample) Record() []string {
	return []string{
		s.IntervalStart.UTC().Format(time.RFC3339),
		s.Namespace,
		s.ContainerName,
		formatFloat(s.CPUUsage),
		formatFloat(s.CPURequest),
		formatFloat(s.CPULimit),
		formatFloat(s.MemoryUsage),
		formatFloat(s.MemoryRequest),
		formatFloat(s.MemoryLimit),
	}
}

// formatFloat leaves NaN cells empty so they read back as missing values
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
