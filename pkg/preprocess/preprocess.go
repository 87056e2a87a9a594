// Package preprocess produces the merged, time-sorted CSV that report
// generation reads.
package preprocess

import (
	"context"
	"os"

	"github.com/pkg/errors"
)

// Preprocessor prepares the input CSV and returns its path
type Preprocessor interface {
	Run(ctx context.Context) (string, error)
}

// Static uses an existing file as-is
type Static struct {
	Path string
}

func (s Static) Run(ctx context.Context) (string, error) {
	if _, err := os.Stat(s.Path); err != nil {
		return "", &PreprocessError{Step: "static", Err: errors.Wrapf(err, "input %s", s.Path)}
	}
	return s.Path, nil
}
