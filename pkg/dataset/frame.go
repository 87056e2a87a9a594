// Package dataset holds the in-memory sample table and the grouping stage
// that splits it into per-container partitions.
package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Frame is a header plus string cells. Columns are typed on access.
type Frame struct {
	Source  string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewFrame builds a frame over the given header and rows.
func NewFrame(columns []string, rows [][]string) *Frame {
	f := &Frame{
		Columns: columns,
		Rows:    rows,
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range columns {
		if _, exists := f.index[name]; !exists {
			f.index[name] = i
		}
	}
	return f
}

// Len returns the number of data rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Column returns the raw cells of a column.
func (f *Frame) Column(name string) ([]string, error) {
	idx, ok := f.index[name]
	if !ok {
		return nil, &ColumnError{Column: name}
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Floats parses a column as float64. Empty cells become NaN.
func (f *Frame) Floats(name string) ([]float64, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" || strings.EqualFold(cell, "nan") {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, &CellError{Column: name, Row: i, Value: cell, Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// Timestamp is a date cell with its parsed value when one of the known
// layouts matches.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// Times parses a column as timestamps. Unparsable cells keep only Raw.
func (f *Frame) Times(name string) ([]Timestamp, error) {
	cells, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]Timestamp, len(cells))
	for i, cell := range cells {
		t, ok := ParseTimestamp(cell)
		out[i] = Timestamp{Raw: cell, Time: t, Valid: ok}
	}
	return out, nil
}

// Subset returns a frame holding the given rows in the given order.
func (f *Frame) Subset(rows []int) *Frame {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = f.Rows[r]
	}
	sub := NewFrame(f.Columns, out)
	sub.Source = f.Source
	return sub
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp tries the layouts seen in usage exports.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
