package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Load reads a CSV file with a header row into a Frame.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	frame, err := Read(file)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
			return nil, loadErr
		}
		return nil, &LoadError{Op: "parse", Path: path, Err: err}
	}
	frame.Source = path
	return frame, nil
}

// Read parses CSV content. Cells keep their surrounding whitespace, so
// "app" and " app" are different containers. Short records are padded with
// empty cells; records longer than the header are a parse error.
func Read(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &LoadError{Op: "parse", Err: errors.New("empty input: no header row")}
	}
	if err != nil {
		return nil, &LoadError{Op: "parse", Err: errors.Wrap(err, "read header")}
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[i] = name
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &LoadError{Op: "parse", Err: errors.Wrap(err, "read rows")}
	}
	for i, row := range rows {
		switch {
		case len(row) > len(header):
			return nil, &LoadError{
				Op:  "parse",
				Err: errors.Errorf("row %d has %d fields, header has %d", i+2, len(row), len(header)),
			}
		case len(row) < len(header):
			rows[i] = append(row, make([]string, len(header)-len(row))...)
		}
	}

	return NewFrame(header, rows), nil
}
