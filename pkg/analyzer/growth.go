package analyzer

import (
	"fmt"
	"math"
	"sort"
)

// minGrowthSamples is roughly 8 hours of data at 5 minute resolution
const minGrowthSamples = 100

// CalculateGrowthTrend fits a line through usage over time. NaN samples are
// dropped and the rest are ordered by timestamp before fitting.
func CalculateGrowthTrend(samples []MetricSample) (*GrowthTrend, error) {
	points := make([]MetricSample, 0, len(samples))
	for _, s := range samples {
		if !math.IsNaN(s.Value) {
			points = append(points, s)
		}
	}
	if len(points) < minGrowthSamples {
		return nil, fmt.Errorf("insufficient data for trend analysis (need %d+ samples, got %d)", minGrowthSamples, len(points))
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	start := points[0].Timestamp
	x := make([]float64, len(points)) // hours since first sample
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Timestamp.Sub(start).Hours()
		y[i] = p.Value
	}

	slope, intercept, r2 := linearRegression(x, y)
	currentAvg := calculateAverage(y)

	const hoursPerMonth = 24.0 * 30.0
	var ratePerMonth float64
	if currentAvg > 0 {
		ratePerMonth = slope * hoursPerMonth / currentAvg * 100.0
	}

	last := x[len(x)-1]
	predict := func(days float64) float64 {
		v := slope*(last+24*days) + intercept
		if v < 0 {
			return currentAvg
		}
		return v
	}

	return &GrowthTrend{
		RatePerMonth:    ratePerMonth,
		Confidence:      r2,
		Predicted3Month: predict(90),
		Predicted6Month: predict(180),
		IsGrowing:       ratePerMonth > 3.0,
	}, nil
}

// linearRegression returns slope, intercept and R² clamped to [0, 1]
func linearRegression(x, y []float64) (slope, intercept, r2 float64) {
	if len(x) == 0 {
		return 0, 0, 0
	}

	meanX := calculateAverage(x)
	meanY := calculateAverage(y)

	var num, den float64
	for i := range x {
		num += (x[i] - meanX) * (y[i] - meanY)
		den += (x[i] - meanX) * (x[i] - meanX)
	}
	if den == 0 {
		return 0, meanY, 0
	}

	slope = num / den
	intercept = meanY - slope*meanX

	var ssTotal, ssRes float64
	for i := range x {
		predicted := slope*x[i] + intercept
		ssRes += (y[i] - predicted) * (y[i] - predicted)
		ssTotal += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTotal == 0 {
		return slope, intercept, 0
	}

	r2 = 1.0 - ssRes/ssTotal
	return slope, intercept, math.Max(0, math.Min(1, r2))
}
