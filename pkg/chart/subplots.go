package chart

// Line is one named series of a panel
type Line struct {
	Name   string
	Values []float64
}

// Panel is one subplot row
type Panel struct {
	Title  string
	YTitle string
	Lines  []Line
}

const (
	defaultHeight   = 800
	verticalSpacing = 0.1
	subplotFontSize = 16
)

// StackedLines lays out two panels stacked vertically over a shared x
// domain. Lines are drawn in the given order; x tick labels and x titles are
// hidden on both panels.
func StackedLines(title string, x []string, top, bottom Panel) *Figure {
	hidden := false
	rowHeight := (1 - verticalSpacing) / 2
	topDomain := [2]float64{1 - rowHeight, 1}
	bottomDomain := [2]float64{0, rowHeight}

	fig := &Figure{
		Layout: Layout{
			Title:      Title{Text: title},
			Height:     defaultHeight,
			ShowLegend: true,
			XAxis:      Axis{Anchor: "y", Domain: [2]float64{0, 1}, ShowTickLabels: &hidden},
			YAxis:      Axis{Anchor: "x", Domain: topDomain, Title: Title{Text: top.YTitle}},
			XAxis2:     Axis{Anchor: "y2", Domain: [2]float64{0, 1}, ShowTickLabels: &hidden, Matches: "x"},
			YAxis2:     Axis{Anchor: "x2", Domain: bottomDomain, Title: Title{Text: bottom.YTitle}},
			Annotations: []Annotation{
				subplotTitle(top.Title, topDomain[1]),
				subplotTitle(bottom.Title, bottomDomain[1]),
			},
		},
	}

	for _, line := range top.Lines {
		fig.Data = append(fig.Data, lineTrace(line, x, "x", "y"))
	}
	for _, line := range bottom.Lines {
		fig.Data = append(fig.Data, lineTrace(line, x, "x2", "y2"))
	}
	return fig
}

func lineTrace(line Line, x []string, xaxis, yaxis string) Trace {
	return Trace{
		Type:  "scatter",
		Mode:  "lines",
		Name:  line.Name,
		X:     x,
		Y:     Values(line.Values),
		XAxis: xaxis,
		YAxis: yaxis,
	}
}

func subplotTitle(text string, top float64) Annotation {
	return Annotation{
		Text:      text,
		X:         0.5,
		Y:         top,
		XRef:      "paper",
		YRef:      "paper",
		XAnchor:   "center",
		YAnchor:   "bottom",
		ShowArrow: false,
		Font:      Font{Size: subplotFontSize},
	}
}
