package analyzer

import (
	"math"

	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
)

// Series is a partition's columns in typed form. Memory is in bytes.
type Series struct {
	Times         []dataset.Timestamp
	CPUUsage      []float64
	CPURequest    []float64
	CPULimit      []float64
	MemoryUsage   []float64
	MemoryRequest []float64
	MemoryLimit   []float64
}

// SeriesFromFrame extracts the usage columns. A missing column or a
// non-numeric cell is returned as the dataset error.
func SeriesFromFrame(f *dataset.Frame) (*Series, error) {
	times, err := f.Times(models.ColumnIntervalStart)
	if err != nil {
		return nil, err
	}

	s := &Series{Times: times}
	columns := []struct {
		name string
		dst  *[]float64
	}{
		{models.ColumnCPUUsage, &s.CPUUsage},
		{models.ColumnCPURequest, &s.CPURequest},
		{models.ColumnCPULimit, &s.CPULimit},
		{models.ColumnMemoryUsage, &s.MemoryUsage},
		{models.ColumnMemoryRequest, &s.MemoryRequest},
		{models.ColumnMemoryLimit, &s.MemoryLimit},
	}
	for _, col := range columns {
		values, err := f.Floats(col.name)
		if err != nil {
			return nil, err
		}
		*col.dst = values
	}
	return s, nil
}

// Len returns the number of rows
func (s *Series) Len() int {
	return len(s.Times)
}

// Labels returns the raw interval_start cells used as the chart's x values
func (s *Series) Labels() []string {
	out := make([]string, len(s.Times))
	for i, t := range s.Times {
		out[i] = t.Raw
	}
	return out
}

// TimeRange returns the first and last interval_start as written in the
// input. Cells are compared as times when every cell parses, otherwise as
// text. Empty cells are ignored; "nan" is returned when nothing is left.
func (s *Series) TimeRange() (start, end string) {
	allValid := true
	for _, t := range s.Times {
		if t.Raw != "" && !t.Valid {
			allValid = false
			break
		}
	}

	var first, last *dataset.Timestamp
	for i := range s.Times {
		t := &s.Times[i]
		if t.Raw == "" {
			continue
		}
		if first == nil {
			first, last = t, t
			continue
		}
		if allValid {
			if t.Time.Before(first.Time) {
				first = t
			}
			if t.Time.After(last.Time) {
				last = t
			}
			continue
		}
		if t.Raw < first.Raw {
			first = t
		}
		if t.Raw > last.Raw {
			last = t
		}
	}
	if first == nil {
		return "nan", "nan"
	}
	return first.Raw, last.Raw
}

// samples pairs a column with parsed timestamps, dropping rows without a time
func (s *Series) samples(values []float64, divisor float64) []MetricSample {
	out := make([]MetricSample, 0, len(values))
	for i, v := range values {
		if !s.Times[i].Valid || math.IsNaN(v) {
			continue
		}
		out = append(out, MetricSample{Timestamp: s.Times[i].Time, Value: v / divisor})
	}
	return out
}
