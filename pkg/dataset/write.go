package dataset

import (
	"encoding/csv"
	"os"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
)

// AppendSamples appends rows to a raw usage CSV, writing the header first
// when the file is new or empty.
func AppendSamples(path string, samples []models.Sample) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to stat %s", path)
	}

	w := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := w.Write(models.Columns); err != nil {
			file.Close()
			return errors.Wrapf(err, "failed to write header to %s", path)
		}
	}
	for _, s := range samples {
		if err := w.Write(s.Record()); err != nil {
			file.Close()
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(file.Close(), "failed to close %s", path)
}
