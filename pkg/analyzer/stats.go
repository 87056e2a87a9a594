package analyzer

import "math"

// Mean averages the non-NaN values. It returns NaN when there are none.
func Mean(values []float64) float64 {
	finite := finiteValues(values)
	if len(finite) == 0 {
		return math.NaN()
	}
	return calculateAverage(finite)
}

// Min returns the smallest non-NaN value, or NaN.
func Min(values []float64) float64 {
	out := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) || v < out {
			out = v
		}
	}
	return out
}

// Max returns the largest non-NaN value, or NaN.
func Max(values []float64) float64 {
	out := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(out) || v > out {
			out = v
		}
	}
	return out
}

// Scale divides every value by divisor. NaN stays NaN.
func Scale(values []float64, divisor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / divisor
	}
	return out
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
