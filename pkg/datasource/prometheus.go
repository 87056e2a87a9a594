package datasource

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	"go.uber.org/zap"
)

// Metric identifies which Sample field a query fills
type Metric string

const (
	CPUUsage      Metric = models.ColumnCPUUsage
	CPURequest    Metric = models.ColumnCPURequest
	CPULimit      Metric = models.ColumnCPULimit
	MemoryUsage   Metric = models.ColumnMemoryUsage
	MemoryRequest Metric = models.ColumnMemoryRequest
	MemoryLimit   Metric = models.ColumnMemoryLimit
)

var metricOrder = []Metric{CPUUsage, CPURequest, CPULimit, MemoryUsage, MemoryRequest, MemoryLimit}

type PrometheusSource struct {
	client v1.API
	url    string
	logger *zap.Logger
	now    func() time.Time
}

func NewPrometheusSource(url string, logger *zap.Logger) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: url,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Prometheus client")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PrometheusSource{
		client: v1.NewAPI(client),
		url:    url,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Queries returns the PromQL used for each column. Every series is averaged
// per (namespace, container) so pod replicas collapse into one row.
func Queries(namespace string, step time.Duration) map[Metric]string {
	sel := selector(namespace)
	rateWindow := step
	if rateWindow < time.Minute {
		rateWindow = time.Minute
	}
	byContainer := "avg by (namespace, container) "

	return map[Metric]string{
		CPUUsage: byContainer + fmt.Sprintf("(rate(container_cpu_usage_seconds_total{%s}[%s]))",
			sel, model.Duration(rateWindow)),
		MemoryUsage:   byContainer + fmt.Sprintf("(container_memory_working_set_bytes{%s})", sel),
		CPURequest:    byContainer + fmt.Sprintf(`(kube_pod_container_resource_requests{%s,resource="cpu"})`, sel),
		CPULimit:      byContainer + fmt.Sprintf(`(kube_pod_container_resource_limits{%s,resource="cpu"})`, sel),
		MemoryRequest: byContainer + fmt.Sprintf(`(kube_pod_container_resource_requests{%s,resource="memory"})`, sel),
		MemoryLimit:   byContainer + fmt.Sprintf(`(kube_pod_container_resource_limits{%s,resource="memory"})`, sel),
	}
}

func selector(namespace string) string {
	matchers := []string{`container!=""`, `container!="POD"`}
	if namespace != "" {
		matchers = append([]string{fmt.Sprintf("namespace=%q", namespace)}, matchers...)
	}
	return strings.Join(matchers, ",")
}

// RangeSamples exports the last window of usage at the given resolution
func (p *PrometheusSource) RangeSamples(ctx context.Context, window, step time.Duration, namespace string) ([]models.Sample, error) {
	end := p.now().Truncate(step)
	r := v1.Range{
		Start: end.Add(-window),
		End:   end,
		Step:  step,
	}

	results := make(map[Metric]model.Matrix, len(metricOrder))
	queries := Queries(namespace, step)
	for _, metric := range metricOrder {
		query := queries[metric]
		p.logger.Debug("prometheus range query",
			zap.String("query", query),
			zap.Time("start", r.Start),
			zap.Time("end", r.End),
			zap.Duration("step", step))

		value, warnings, err := p.client.QueryRange(ctx, query, r)
		if err != nil {
			return nil, errors.Wrapf(err, "prometheus query for %s failed", metric)
		}
		if len(warnings) > 0 {
			p.logger.Warn("prometheus warnings", zap.Strings("warnings", warnings))
		}

		matrix, ok := value.(model.Matrix)
		if !ok {
			return nil, errors.Errorf("unexpected result type for %s: %T", metric, value)
		}
		results[metric] = matrix
	}

	return JoinMatrices(results), nil
}

type sampleKey struct {
	namespace string
	container string
	ts        model.Time
}

// JoinMatrices merges per-metric series into one row per
// (namespace, container, timestamp). Metrics without a value at that
// timestamp stay NaN.
func JoinMatrices(results map[Metric]model.Matrix) []models.Sample {
	rows := make(map[sampleKey]*models.Sample)

	for _, metric := range metricOrder {
		for _, stream := range results[metric] {
			ns := string(stream.Metric["namespace"])
			container := string(stream.Metric["container"])
			for _, pair := range stream.Values {
				key := sampleKey{namespace: ns, container: container, ts: pair.Timestamp}
				row, ok := rows[key]
				if !ok {
					row = emptySample(ns, container, pair.Timestamp.Time().UTC())
					rows[key] = row
				}
				setField(row, metric, float64(pair.Value))
			}
		}
	}

	samples := make([]models.Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, *row)
	}
	sort.Slice(samples, func(i, j int) bool {
		a, b := samples[i], samples[j]
		if !a.IntervalStart.Equal(b.IntervalStart) {
			return a.IntervalStart.Before(b.IntervalStart)
		}
		if a.Namespace != b.Namespace {
			return a.Namespace < b.Namespace
		}
		return a.ContainerName < b.ContainerName
	})
	return samples
}

func emptySample(namespace, container string, ts time.Time) *models.Sample {
	nan := math.NaN()
	return &models.Sample{
		IntervalStart: ts,
		Namespace:     namespace,
		ContainerName: container,
		CPUUsage:      nan,
		CPURequest:    nan,
		CPULimit:      nan,
		MemoryUsage:   nan,
		MemoryRequest: nan,
		MemoryLimit:   nan,
	}
}

func setField(s *models.Sample, metric Metric, v float64) {
	switch metric {
	case CPUUsage:
		s.CPUUsage = v
	case CPURequest:
		s.CPURequest = v
	case CPULimit:
		s.CPULimit = v
	case MemoryUsage:
		s.MemoryUsage = v
	case MemoryRequest:
		s.MemoryRequest = v
	case MemoryLimit:
		s.MemoryLimit = v
	}
}

func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", p.now())
	return err == nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}
