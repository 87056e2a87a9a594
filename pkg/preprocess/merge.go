package preprocess

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
)

const mergeStep = "native merge"

// MergeSorter concatenates raw exports and sorts them by
// (interval_start, namespace, container_name)
type MergeSorter struct {
	Inputs []string
	Output string
}

func (m *MergeSorter) Run(ctx context.Context) (string, error) {
	files, err := m.expand()
	if err != nil {
		return "", &PreprocessError{Step: mergeStep, Err: err}
	}

	var header []string
	var rows [][]string
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return "", &PreprocessError{Step: mergeStep, Err: err}
		}
		h, r, err := readCSV(file)
		if err != nil {
			return "", &PreprocessError{Step: mergeStep, Err: err}
		}
		if header == nil {
			header = h
		} else if !sameHeader(header, h) {
			return "", &PreprocessError{
				Step: mergeStep,
				Err:  errors.Errorf("%s: header %v does not match %v", file, h, header),
			}
		}
		for _, row := range r {
			if !sameHeader(header, row) {
				rows = append(rows, row)
			}
		}
	}

	if err := sortRows(header, rows); err != nil {
		return "", &PreprocessError{Step: mergeStep, Err: err}
	}
	if err := writeCSV(m.Output, header, rows); err != nil {
		return "", &PreprocessError{Step: mergeStep, Err: err}
	}
	return m.Output, nil
}

// expand resolves glob patterns; the output file is never its own input
func (m *MergeSorter) expand() ([]string, error) {
	outAbs, _ := filepath.Abs(m.Output)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range m.Inputs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "bad input pattern %q", pattern)
		}
		sort.Strings(matches)
		for _, match := range matches {
			abs, _ := filepath.Abs(match)
			if abs == outAbs || seen[abs] {
				continue
			}
			seen[abs] = true
			files = append(files, match)
		}
	}

	if len(files) == 0 {
		return nil, errors.Errorf("no input files match %v", m.Inputs)
	}
	return files, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "read %s", path)
	}
	if len(records) == 0 {
		return nil, nil, errors.Errorf("%s is empty", path)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}
	return header, records[1:], nil
}

func sameHeader(header, row []string) bool {
	if len(header) != len(row) {
		return false
	}
	for i := range header {
		if strings.TrimSpace(row[i]) != header[i] {
			return false
		}
	}
	return true
}

func sortRows(header []string, rows [][]string) error {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	keys := []string{models.ColumnIntervalStart, models.ColumnNamespace, models.ColumnContainerName}
	for _, key := range keys {
		if _, ok := idx[key]; !ok {
			return errors.Errorf("missing sort column %q", key)
		}
	}

	ts := idx[models.ColumnIntervalStart]
	ns := idx[models.ColumnNamespace]
	cn := idx[models.ColumnContainerName]

	keyed := make([]sortKey, len(rows))
	byTime := true
	for i, row := range rows {
		keyed[i].row = row
		if strings.TrimSpace(row[ts]) == "" {
			continue
		}
		t, ok := dataset.ParseTimestamp(row[ts])
		if !ok {
			byTime = false
		}
		keyed[i].time = t
	}

	// one ordering for the whole merge: by time only when every
	// non-empty interval_start parses, by raw text otherwise
	sort.SliceStable(keyed, func(i, j int) bool {
		a, b := keyed[i], keyed[j]
		var c int
		if byTime {
			c = a.time.Compare(b.time)
		} else {
			c = strings.Compare(a.row[ts], b.row[ts])
		}
		if c != 0 {
			return c < 0
		}
		if a.row[ns] != b.row[ns] {
			return a.row[ns] < b.row[ns]
		}
		return a.row[cn] < b.row[cn]
	})

	for i := range keyed {
		rows[i] = keyed[i].row
	}
	return nil
}

type sortKey struct {
	row  []string
	time time.Time
}

func writeCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		file.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := w.WriteAll(rows); err != nil {
		file.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}
