package chart

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func sampleFigure() *Figure {
	return StackedLines("Usage",
		[]string{"t0", "t1"},
		Panel{Title: "cpu", YTitle: "CPU Usage", Lines: []Line{
			{Name: "a", Values: []float64{1, 2}},
			{Name: "b", Values: []float64{3, math.NaN()}},
		}},
		Panel{Title: "mem", YTitle: "Memory Usage (MB)", Lines: []Line{
			{Name: "c", Values: []float64{5, 6}},
		}},
	)
}

func TestStackedLinesLayout(t *testing.T) {
	fig := sampleFigure()

	if len(fig.Data) != 3 {
		t.Fatalf("Expected 3 traces, got %d", len(fig.Data))
	}
	order := []string{"a", "b", "c"}
	for i, name := range order {
		if fig.Data[i].Name != name {
			t.Errorf("Expected trace %d to be %s, got %s", i, name, fig.Data[i].Name)
		}
		if fig.Data[i].Mode != "lines" {
			t.Errorf("Expected lines mode, got %s", fig.Data[i].Mode)
		}
	}
	if fig.Data[2].XAxis != "x2" || fig.Data[2].YAxis != "y2" {
		t.Errorf("Expected bottom panel trace on x2/y2, got %s/%s", fig.Data[2].XAxis, fig.Data[2].YAxis)
	}

	l := fig.Layout
	if l.Height != 800 || !l.ShowLegend {
		t.Errorf("Expected height 800 with legend, got %d/%v", l.Height, l.ShowLegend)
	}
	if l.XAxis.ShowTickLabels == nil || *l.XAxis.ShowTickLabels {
		t.Error("Expected x tick labels hidden on the top panel")
	}
	if l.XAxis2.ShowTickLabels == nil || *l.XAxis2.ShowTickLabels {
		t.Error("Expected x tick labels hidden on the bottom panel")
	}
	if l.XAxis.Title.Text != "" || l.XAxis2.Title.Text != "" {
		t.Error("Expected empty x axis titles")
	}
	if l.YAxis.Title.Text != "CPU Usage" || l.YAxis2.Title.Text != "Memory Usage (MB)" {
		t.Errorf("Unexpected y titles %q / %q", l.YAxis.Title.Text, l.YAxis2.Title.Text)
	}
	if math.Abs(l.YAxis.Domain[0]-0.55) > 1e-9 || math.Abs(l.YAxis2.Domain[1]-0.45) > 1e-9 {
		t.Errorf("Unexpected y domains %v / %v", l.YAxis.Domain, l.YAxis2.Domain)
	}
	if len(l.Annotations) != 2 || l.Annotations[0].Text != "cpu" || l.Annotations[1].Text != "mem" {
		t.Errorf("Unexpected subplot titles %+v", l.Annotations)
	}
}

func TestFigureJSON(t *testing.T) {
	data, err := sampleFigure().JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	if !strings.Contains(string(data), `"y":[3,null]`) {
		t.Errorf("Expected NaN to encode as null, got %s", data)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Figure JSON does not parse: %v", err)
	}
	if _, ok := decoded["data"]; !ok {
		t.Error("Expected data key")
	}
	if _, ok := decoded["layout"]; !ok {
		t.Error("Expected layout key")
	}
}

func TestFigureJSONEscapesScriptClose(t *testing.T) {
	fig := StackedLines("</script><b>", nil, Panel{}, Panel{})

	data, err := fig.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if strings.Contains(string(data), "</script>") {
		t.Errorf("Expected </script> to be escaped, got %s", data)
	}
}
