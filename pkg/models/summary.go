package models

import "time"

// ContainerSummary is the flattened per-container result of one report run.
// It feeds the summary index CSV and the summary store.
type ContainerSummary struct {
	RunID       string
	Namespace   string
	Container   string
	StartTime   string
	EndTime     string
	SampleCount int

	// CPU in cores
	AvgCPUUsage float64
	CPURequest  float64
	CPULimit    float64
	P95CPUUsage float64

	// Memory in MB
	AvgMemoryMB     float64
	MemoryRequestMB float64
	MemoryLimitMB   float64
	P95MemoryMB     float64

	CPUPattern    string
	MemoryPattern string

	ReportPath string
	CreatedAt  time.Time
}

// RunStats aggregates summaries stored for a namespace
type RunStats struct {
	Namespace     string
	Runs          int
	Containers    int
	AvgCPUUsage   float64
	AvgMemoryMB   float64
	LastGenerated time.Time
}
