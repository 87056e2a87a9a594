// Package chart builds Plotly figure descriptions. The figure is serialized
// to JSON and handed to Plotly.newPlot in the browser.
package chart

import (
	"encoding/json"
	"math"
)

// Figure is the data/layout pair Plotly renders
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a scatter series bound to one subplot's axes
type Trace struct {
	Type  string   `json:"type"`
	Mode  string   `json:"mode"`
	Name  string   `json:"name"`
	X     []string `json:"x"`
	Y     []Value  `json:"y"`
	XAxis string   `json:"xaxis"`
	YAxis string   `json:"yaxis"`
}

// Value is a y coordinate. NaN marshals as null, leaving a gap in the line.
type Value float64

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Layout holds the figure-level settings and the per-subplot axes
type Layout struct {
	Title       Title        `json:"title"`
	Height      int          `json:"height"`
	ShowLegend  bool         `json:"showlegend"`
	Annotations []Annotation `json:"annotations,omitempty"`

	XAxis  Axis `json:"xaxis"`
	YAxis  Axis `json:"yaxis"`
	XAxis2 Axis `json:"xaxis2"`
	YAxis2 Axis `json:"yaxis2"`
}

// Title is a text title
type Title struct {
	Text string `json:"text"`
}

// Axis places one axis of a subplot
type Axis struct {
	Anchor         string     `json:"anchor"`
	Domain         [2]float64 `json:"domain"`
	Title          Title      `json:"title"`
	ShowTickLabels *bool      `json:"showticklabels,omitempty"`
	Matches        string     `json:"matches,omitempty"`
}

// Annotation is a subplot title positioned in paper coordinates
type Annotation struct {
	Text      string  `json:"text"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
	ShowArrow bool    `json:"showarrow"`
	Font      Font    `json:"font"`
}

// Font sets annotation text size
type Font struct {
	Size int `json:"size"`
}

// JSON encodes the figure. HTML-significant characters are escaped so the
// output can be embedded in a script element.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

// Values converts a float column into trace values
func Values(in []float64) []Value {
	out := make([]Value, len(in))
	for i, v := range in {
		out[i] = Value(v)
	}
	return out
}
