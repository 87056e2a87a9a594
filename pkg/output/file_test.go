package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/opscart/k8s-usage-reporter/pkg/reporter"
	"k8s.io/apimachinery/pkg/types"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		namespace string
		container string
		want      string
	}{
		{"default", "app", "default_app_report.html"},
		{"team a", "web/api", "team_a_web_api_report.html"},
		{"a/b c", " x ", "a_b_c__x__report.html"},
	}

	for _, tt := range tests {
		got := SafeFilename(tt.namespace, tt.container)
		if got != tt.want {
			t.Errorf("SafeFilename(%q, %q) = %q, expected %q", tt.namespace, tt.container, got, tt.want)
		}
		if strings.ContainsAny(got, "/ ") {
			t.Errorf("SafeFilename(%q, %q) kept a separator: %q", tt.namespace, tt.container, got)
		}
	}
}

func buildReport(t *testing.T, ns, name string) *reporter.Report {
	t.Helper()
	p := dataset.Partition{
		Key: types.NamespacedName{Namespace: ns, Name: name},
		Rows: dataset.NewFrame(models.Columns, [][]string{
			{"2024-01-01T00:00", ns, name, "0.1", "0.2", "0.5", "104857600", "209715200", "314572800"},
		}),
	}
	report, err := reporter.New("").Build(p)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return report
}

func TestWriteReportOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "container_reports")
	handler := NewFileHandler(dir)
	report := buildReport(t, "kube system", "proxy/sidecar")

	first, err := handler.WriteReport(report)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if filepath.Base(first) != "kube_system_proxy_sidecar_report.html" {
		t.Errorf("Unexpected file name %s", filepath.Base(first))
	}
	firstData, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}

	second, err := handler.WriteReport(report)
	if err != nil {
		t.Fatalf("Second WriteReport failed: %v", err)
	}
	secondData, err := os.ReadFile(second)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}

	if first != second {
		t.Errorf("Expected same path on rewrite, got %s and %s", first, second)
	}
	if string(firstData) != string(secondData) {
		t.Error("Expected byte-identical output on rewrite")
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	handler := NewFileHandler(filepath.Join(t.TempDir(), "out"))
	for i := 0; i < 2; i++ {
		if err := handler.EnsureDir(); err != nil {
			t.Fatalf("EnsureDir call %d failed: %v", i+1, err)
		}
	}
}

func TestWriteIndex(t *testing.T) {
	handler := NewFileHandler(t.TempDir())

	path, err := handler.WriteIndex([]models.ContainerSummary{{Namespace: "default", Container: "app"}})
	if err != nil {
		t.Fatalf("WriteIndex failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read index: %v", err)
	}
	if !strings.HasPrefix(string(data), "Namespace,Container,") {
		t.Errorf("Unexpected index header: %s", data)
	}
}
