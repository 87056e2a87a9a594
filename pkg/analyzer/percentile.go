package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// CalculatePercentiles computes P50, P90, P95, P99, and peak. NaN values are skipped.
func CalculatePercentiles(values []float64) (*Percentiles, error) {
	sorted := finiteValues(values)
	if len(sorted) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}
	sort.Float64s(sorted)

	return &Percentiles{
		Average: calculateAverage(sorted),
		P50:     calculatePercentile(sorted, 50),
		P90:     calculatePercentile(sorted, 90),
		P95:     calculatePercentile(sorted, 95),
		P99:     calculatePercentile(sorted, 99),
		Peak:    sorted[len(sorted)-1],
		Min:     sorted[0],
	}, nil
}

// calculatePercentile computes the Nth percentile using linear interpolation
func calculatePercentile(sortedValues []float64, percentile float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if len(sortedValues) == 1 {
		return sortedValues[0]
	}

	rank := (percentile / 100.0) * float64(len(sortedValues)-1)
	lowerIndex := int(math.Floor(rank))
	upperIndex := int(math.Ceil(rank))
	if lowerIndex == upperIndex {
		return sortedValues[lowerIndex]
	}

	lowerValue := sortedValues[lowerIndex]
	upperValue := sortedValues[upperIndex]
	fraction := rank - float64(lowerIndex)
	return lowerValue + (upperValue-lowerValue)*fraction
}

// calculateAverage computes the mean of values
func calculateAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// CalculateCoefficientOfVariation measures the relative variability
// High CV (>0.5) = spiky workload
// Low CV (<0.2) = steady workload
func CalculateCoefficientOfVariation(values []float64) float64 {
	finite := finiteValues(values)
	if len(finite) < 2 {
		return 0
	}

	mean := calculateAverage(finite)
	if mean == 0 {
		return 0
	}

	sumSquaredDiff := 0.0
	for _, v := range finite {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	stdDev := math.Sqrt(sumSquaredDiff / float64(len(finite)))
	return stdDev / mean
}

// AnalyzeUsagePattern classifies a usage column as steady, moderate, spiky or highly-variable
func AnalyzeUsagePattern(values []float64) UsagePattern {
	if len(finiteValues(values)) < 10 {
		return UsagePattern{Type: "unknown"}
	}

	cv := CalculateCoefficientOfVariation(values)

	var patternType string
	var confidence float64
	switch {
	case cv < 0.15:
		patternType, confidence = "steady", 0.95
	case cv < 0.35:
		patternType, confidence = "moderate", 0.85
	case cv < 0.70:
		patternType, confidence = "spiky", 0.80
	default:
		patternType, confidence = "highly-variable", 0.75
	}

	return UsagePattern{
		Type:       patternType,
		Variation:  cv,
		Confidence: confidence,
	}
}
