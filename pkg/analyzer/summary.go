package analyzer

import (
	"fmt"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"k8s.io/apimachinery/pkg/types"
)

// Summarize computes the report statistics over a whole partition.
func Summarize(key types.NamespacedName, s *Series, mode SummaryMode) (*Summary, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("no samples for %s", key)
	}
	if mode == "" {
		mode = SummaryLegacy
	}

	memoryLimitSource := s.MemoryRequest
	if mode == SummaryCorrected {
		memoryLimitSource = s.MemoryLimit
	}

	start, end := s.TimeRange()
	summary := &Summary{
		Namespace:   key.Namespace,
		Container:   key.Name,
		SampleCount: s.Len(),
		Mode:        mode,
		StartTime:   start,
		EndTime:     end,

		AvgCPUUsage: Mean(s.CPUUsage),
		CPURequest:  Max(s.CPURequest),
		CPULimit:    Max(s.CPULimit),

		AvgMemoryMB:     Mean(s.MemoryUsage) / models.BytesPerMB,
		MemoryRequestMB: Min(s.MemoryRequest) / models.BytesPerMB,
		MemoryLimitMB:   Max(memoryLimitSource) / models.BytesPerMB,

		CPUPattern:    AnalyzeUsagePattern(s.CPUUsage),
		MemoryPattern: AnalyzeUsagePattern(s.MemoryUsage),
	}

	if p, err := CalculatePercentiles(s.CPUUsage); err == nil {
		summary.CPUUsage = p
	}
	if p, err := CalculatePercentiles(Scale(s.MemoryUsage, models.BytesPerMB)); err == nil {
		summary.MemoryUsageMB = p
	}
	if trend, err := CalculateGrowthTrend(s.samples(s.MemoryUsage, models.BytesPerMB)); err == nil {
		summary.MemoryGrowth = trend
	}

	return summary, nil
}
