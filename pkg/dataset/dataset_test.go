package dataset

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
	"k8s.io/apimachinery/pkg/types"
)

const header = "interval_start,namespace,container_name,cpu_usage_container_avg,cpu_request_container_avg,cpu_limit_container_avg,memory_usage_container_avg,memory_request_container_avg,memory_limit_container_avg\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if loadErr.Op != "open" {
		t.Errorf("Expected op open, got %s", loadErr.Op)
	}
}

func TestLoadPadsShortRows(t *testing.T) {
	frame, err := Load(writeCSV(t, "a,b,c\n1,2,3\n4,5\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	got, err := frame.Floats("c")
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if got[0] != 3 || !math.IsNaN(got[1]) {
		t.Errorf("Expected [3 NaN], got %v", got)
	}
}

func TestLoadLongRow(t *testing.T) {
	path := writeCSV(t, "a,b,c\n1,2,3\n4,5,6,7\n")

	_, err := Load(path)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	if loadErr.Op != "parse" || loadErr.Path != path {
		t.Errorf("Expected parse error for %s, got %+v", path, loadErr)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	_, err := Load(writeCSV(t, ""))

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
}

func TestLoadDoesNotCheckColumns(t *testing.T) {
	frame, err := Load(writeCSV(t, "\ufefffoo, bar\n1,2\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff([]string{"foo", "bar"}, frame.Columns); diff != "" {
		t.Errorf("Unexpected header (-want +got):\n%s", diff)
	}

	_, err = frame.Floats(models.ColumnCPUUsage)
	var colErr *ColumnError
	if !errors.As(err, &colErr) {
		t.Fatalf("Expected ColumnError on first use, got %v", err)
	}
	if colErr.Column != models.ColumnCPUUsage {
		t.Errorf("Expected missing column %s, got %s", models.ColumnCPUUsage, colErr.Column)
	}
}

func TestFloats(t *testing.T) {
	frame := NewFrame([]string{"v"}, [][]string{{"1.5"}, {""}, {" 2 "}, {"NaN"}})

	got, err := frame.Floats("v")
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if got[0] != 1.5 || got[2] != 2 {
		t.Errorf("Unexpected values %v", got)
	}
	if !math.IsNaN(got[1]) || !math.IsNaN(got[3]) {
		t.Errorf("Expected NaN for empty cells, got %v", got)
	}

	bad := NewFrame([]string{"v"}, [][]string{{"1"}, {"lots"}})
	_, err = bad.Floats("v")
	var cellErr *CellError
	if !errors.As(err, &cellErr) {
		t.Fatalf("Expected CellError, got %v", err)
	}
	if cellErr.Row != 1 || cellErr.Value != "lots" {
		t.Errorf("Unexpected cell error %+v", cellErr)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw   string
		valid bool
		want  string
	}{
		{raw: "2024-01-01T00:00", valid: true, want: "2024-01-01T00:00:00Z"},
		{raw: "2024-01-01 10:30:00", valid: true, want: "2024-01-01T10:30:00Z"},
		{raw: "2024-01-01 10:30:00+02:00", valid: true, want: "2024-01-01T08:30:00Z"},
		{raw: "2024-01-01T10:30:00.5Z", valid: true, want: "2024-01-01T10:30:00Z"},
		{raw: "2024-03-05", valid: true, want: "2024-03-05T00:00:00Z"},
		{raw: "yesterday", valid: false},
		{raw: "", valid: false},
	}

	for _, tt := range tests {
		got, ok := ParseTimestamp(tt.raw)
		if ok != tt.valid {
			t.Errorf("ParseTimestamp(%q) valid=%v, expected %v", tt.raw, ok, tt.valid)
			continue
		}
		if ok && got.UTC().Truncate(1e9).Format("2006-01-02T15:04:05Z07:00") != tt.want {
			t.Errorf("ParseTimestamp(%q) = %s, expected %s", tt.raw, got.UTC(), tt.want)
		}
	}
}

func TestGroupByCompletenessAndOrder(t *testing.T) {
	content := header +
		"2024-01-01T00:00,prod,web,1,1,1,1,1,1\n" +
		"2024-01-01T00:00,default,app,2,2,2,2,2,2\n" +
		"2024-01-01T00:05,prod,web,3,3,3,3,3,3\n" +
		"2024-01-01T00:00,default,api,4,4,4,4,4,4\n" +
		"2024-01-01T00:05,default,app,5,5,5,5,5,5\n" +
		"2024-01-01T00:05,default,app,5,5,5,5,5,5\n"
	frame, err := Load(writeCSV(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	partitions, err := GroupBy(frame)
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}

	wantKeys := []types.NamespacedName{
		{Namespace: "default", Name: "api"},
		{Namespace: "default", Name: "app"},
		{Namespace: "prod", Name: "web"},
	}
	var gotKeys []types.NamespacedName
	seen := make(map[types.NamespacedName]bool)
	total := 0
	for _, p := range partitions {
		if seen[p.Key] {
			t.Errorf("Duplicate partition key %v", p.Key)
		}
		seen[p.Key] = true
		gotKeys = append(gotKeys, p.Key)
		if p.Len() == 0 {
			t.Errorf("Partition %v is empty", p.Key)
		}
		total += p.Len()
	}
	if diff := cmp.Diff(wantKeys, gotKeys); diff != "" {
		t.Errorf("Unexpected partition keys (-want +got):\n%s", diff)
	}
	if total != frame.Len() {
		t.Errorf("Expected %d rows across partitions, got %d", frame.Len(), total)
	}

	// duplicates are kept and input order is preserved
	app := partitions[1]
	usage, err := app.Rows.Floats(models.ColumnCPUUsage)
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if diff := cmp.Diff([]float64{2, 5, 5}, usage); diff != "" {
		t.Errorf("Unexpected row order (-want +got):\n%s", diff)
	}
}

func TestGroupByRowsUnion(t *testing.T) {
	var b strings.Builder
	b.WriteString(header)
	names := []string{"a", "b", "c", "a b", "x/y"}
	for i := 0; i < 50; i++ {
		b.WriteString("2024-01-01T00:00,ns")
		b.WriteString(string(rune('0' + i%3)))
		b.WriteString(",")
		b.WriteString(names[i%len(names)])
		b.WriteString(",")
		b.WriteString(strings.Repeat("1", 1+i%4))
		b.WriteString(",0,0,0,0,0\n")
	}
	frame, err := Read(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	partitions, err := GroupBy(frame)
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}

	counts := make(map[string]int)
	for _, row := range frame.Rows {
		counts[strings.Join(row, "|")]++
	}
	for _, p := range partitions {
		for _, row := range p.Rows.Rows {
			if row[1] != p.Key.Namespace || row[2] != p.Key.Name {
				t.Errorf("Row %v placed in partition %v", row, p.Key)
			}
			counts[strings.Join(row, "|")]--
		}
	}
	for row, n := range counts {
		if n != 0 {
			t.Errorf("Row %q off by %d after grouping", row, n)
		}
	}
}

func TestGroupByMissingKeyColumn(t *testing.T) {
	frame := NewFrame([]string{"interval_start", "namespace"}, [][]string{{"2024-01-01", "default"}})

	_, err := GroupBy(frame)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected LoadError, got %v", err)
	}
	var colErr *ColumnError
	if !errors.As(err, &colErr) || colErr.Column != models.ColumnContainerName {
		t.Errorf("Expected missing container_name column, got %v", err)
	}
}

func TestGroupByKeepsWhitespaceDistinct(t *testing.T) {
	frame, err := Read(strings.NewReader(header +
		"2024-01-01T00:00,default,app,1,0,0,0,0,0\n" +
		"2024-01-01T00:00,default, app,2,0,0,0,0,0\n"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	partitions, err := GroupBy(frame)
	if err != nil {
		t.Fatalf("GroupBy failed: %v", err)
	}

	var got []types.NamespacedName
	for _, p := range partitions {
		got = append(got, p.Key)
	}
	want := []types.NamespacedName{
		{Namespace: "default", Name: " app"},
		{Namespace: "default", Name: "app"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Unexpected partition keys (-want +got):\n%s", diff)
	}
}
