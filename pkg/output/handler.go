package output

import (
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/opscart/k8s-usage-reporter/pkg/reporter"
)

// Handler defines where rendered reports go
type Handler interface {
	EnsureDir() error
	WriteReport(report *reporter.Report) (string, error)
	WriteIndex(summaries []models.ContainerSummary) (string, error)
}
