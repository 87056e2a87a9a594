package dataset

import "fmt"

// LoadError reports an input table that could not be opened, parsed or keyed.
type LoadError struct {
	Op   string // open, parse, group
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("load %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("load %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ColumnError is returned on first use of a column the header does not carry.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// CellError points at a cell that does not parse as the requested type.
type CellError struct {
	Column string
	Row    int
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("column %q row %d: invalid value %q: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }
