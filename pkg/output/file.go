package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/opscart/k8s-usage-reporter/pkg/reporter"
	"github.com/pkg/errors"
)

// IndexFile is the summary CSV written next to the reports
const IndexFile = "summary.csv"

var filenameReplacer = strings.NewReplacer("/", "_", " ", "_")

// SafeFilename derives the report file name for a container
func SafeFilename(namespace, container string) string {
	return filenameReplacer.Replace(fmt.Sprintf("%s_%s_report.html", namespace, container))
}

// FileHandler writes reports into a directory, overwriting files of the same name
type FileHandler struct {
	Dir string
}

// NewFileHandler creates a handler rooted at dir
func NewFileHandler(dir string) *FileHandler {
	return &FileHandler{Dir: dir}
}

// EnsureDir creates the output directory if it does not exist
func (h *FileHandler) EnsureDir() error {
	if err := os.MkdirAll(h.Dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", h.Dir)
	}
	return nil
}

// WriteReport renders the report into <dir>/<namespace>_<container>_report.html
func (h *FileHandler) WriteReport(report *reporter.Report) (string, error) {
	path := filepath.Join(h.Dir, SafeFilename(report.Key.Namespace, report.Key.Name))
	err := h.writeFile(path, func(f *os.File) error {
		return reporter.RenderHTML(report, f)
	})
	return path, err
}

// WriteIndex writes the summary CSV for the run
func (h *FileHandler) WriteIndex(summaries []models.ContainerSummary) (string, error) {
	path := filepath.Join(h.Dir, IndexFile)
	err := h.writeFile(path, func(f *os.File) error {
		return reporter.GenerateCSV(summaries, f)
	})
	return path, err
}

func (h *FileHandler) writeFile(path string, write func(*os.File) error) error {
	if err := h.EnsureDir(); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(file.Close(), "failed to close %s", path)
}
