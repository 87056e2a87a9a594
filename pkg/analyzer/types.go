package analyzer

import "time"

// MetricSample represents a single metric data point
type MetricSample struct {
	Timestamp time.Time
	Value     float64
}

// Percentiles contains statistical percentiles
type Percentiles struct {
	Average float64
	P50     float64
	P90     float64
	P95     float64
	P99     float64
	Peak    float64
	Min     float64
}

// UsagePattern describes usage behavior
type UsagePattern struct {
	Type       string  // "steady", "moderate", "spiky", "highly-variable", "unknown"
	Variation  float64 // Coefficient of variation
	Confidence float64 // How confident we are (0-1)
}

// GrowthTrend describes growth over time
type GrowthTrend struct {
	RatePerMonth    float64 // % growth per month
	Confidence      float64
	Predicted3Month float64
	Predicted6Month float64
	IsGrowing       bool
}

// SummaryMode selects how the request and limit lines of a summary are computed.
type SummaryMode string

const (
	// SummaryLegacy reproduces the historical report values: request and
	// limit lines labeled "Avg" hold maxima/minima, and the memory limit line
	// is taken from the memory request column.
	SummaryLegacy SummaryMode = "legacy"
	// SummaryCorrected reads the memory limit line from the limit column.
	SummaryCorrected SummaryMode = "corrected"
)

// Summary holds the statistics shown under a container's chart
type Summary struct {
	Namespace   string
	Container   string
	SampleCount int
	Mode        SummaryMode

	// Monitoring period, as written in the input
	StartTime string
	EndTime   string

	// CPU in cores
	AvgCPUUsage float64
	CPURequest  float64 // max of the request column
	CPULimit    float64 // max of the limit column

	// Memory in MB
	AvgMemoryMB     float64
	MemoryRequestMB float64 // min of the request column
	MemoryLimitMB   float64 // max of the request column (legacy) or limit column

	// Usage profile, nil when the column has no values
	CPUUsage      *Percentiles
	MemoryUsageMB *Percentiles
	CPUPattern    UsagePattern
	MemoryPattern UsagePattern
	MemoryGrowth  *GrowthTrend
}
