package reporter

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"

	"github.com/opscart/k8s-usage-reporter/pkg/analyzer"
)

// PlotlyURL is the CDN location of the charting runtime. It is only fetched
// when the report is opened in a browser.
const PlotlyURL = "https://cdn.plot.ly/plotly-latest.min.js"

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Container Resource Usage Report - {{.Summary.Container}}</title>
    <script src="{{.PlotlyURL}}"></script>
    <style>
        body { font-family: Arial, sans-serif; max-width: 1200px; margin: 0 auto; padding: 20px; }
    </style>
</head>
<body>
    <h2>Resource Usage Summary for {{.Summary.Container}}</h2>
    <p>Namespace: {{.Summary.Namespace}}</p>
    <h3>Monitoring Period</h3>
    <ul>
        <li>Start Time: {{.Summary.StartTime}}</li>
        <li>End Time: {{.Summary.EndTime}}</li>
    </ul>
    <h3>CPU Usage</h3>
    <ul>
        <li>Average CPU Usage: {{f6 .Summary.AvgCPUUsage}}</li>
        <li>{{.Labels.CPURequest}}: {{f6 .Summary.CPURequest}}</li>
        <li>{{.Labels.CPULimit}}: {{f6 .Summary.CPULimit}}</li>
    </ul>
    <h3>Memory Usage</h3>
    <ul>
        <li>Average Memory Usage: {{f2 .Summary.AvgMemoryMB}} MB</li>
        <li>{{.Labels.MemoryRequest}}: {{f2 .Summary.MemoryRequestMB}} MB</li>
        <li>{{.Labels.MemoryLimit}}: {{f2 .Summary.MemoryLimitMB}} MB</li>
    </ul>
    <h3>Usage Profile</h3>
    <ul>
        <li>Samples: {{.Summary.SampleCount}}</li>
        {{- with .Summary.CPUUsage}}
        <li>P95 CPU Usage: {{f6 .P95}}</li>
        {{- end}}
        {{- with .Summary.MemoryUsageMB}}
        <li>P95 Memory Usage: {{f2 .P95}} MB</li>
        {{- end}}
        <li>CPU Pattern: {{.Summary.CPUPattern.Type}}</li>
        <li>Memory Pattern: {{.Summary.MemoryPattern.Type}}</li>
        {{- with .Summary.MemoryGrowth}}
        <li>Memory Growth: {{f2 .RatePerMonth}}% per month{{if .IsGrowing}} (growing){{end}}</li>
        {{- end}}
    </ul>
    <div id="plotly-chart"></div>
    <script>
        var plotlyChart = {{.Chart}};
        Plotly.newPlot('plotly-chart', plotlyChart.data, plotlyChart.layout);
    </script>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"f6": func(v float64) string { return formatFixed(v, 6) },
	"f2": func(v float64) string { return formatFixed(v, 2) },
}).Parse(htmlTemplate))

// Labels are the captions of the request and limit summary lines
type Labels struct {
	CPURequest    string
	CPULimit      string
	MemoryRequest string
	MemoryLimit   string
}

// LabelsFor returns the captions used by a summary mode. Legacy keeps the
// historical "(Avg)" captions even though the values are maxima and minima.
func LabelsFor(mode analyzer.SummaryMode) Labels {
	if mode == analyzer.SummaryCorrected {
		return Labels{
			CPURequest:    "CPU Request (Max)",
			CPULimit:      "CPU Limit (Max)",
			MemoryRequest: "Memory Request (Min)",
			MemoryLimit:   "Memory Limit (Max)",
		}
	}
	return Labels{
		CPURequest:    "CPU Request (Avg)",
		CPULimit:      "CPU Limit (Avg)",
		MemoryRequest: "Memory Request (Avg)",
		MemoryLimit:   "Memory Limit (Avg)",
	}
}

type htmlView struct {
	Summary   *analyzer.Summary
	Labels    Labels
	PlotlyURL string
	Chart     template.JS
}

// RenderHTML writes the standalone HTML document for a report
func RenderHTML(report *Report, writer io.Writer) error {
	chartJSON, err := report.Figure.JSON()
	if err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}

	view := htmlView{
		Summary:   report.Summary,
		Labels:    LabelsFor(report.Summary.Mode),
		PlotlyURL: PlotlyURL,
		Chart:     template.JS(chartJSON),
	}
	if err := reportTemplate.Execute(writer, view); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// formatFixed prints v with the given decimals; missing values print as nan
func formatFixed(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
