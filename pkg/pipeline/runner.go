// Package pipeline runs one report generation pass: preprocess, load, group,
// then build and write a report per container.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/metrics"
	"github.com/opscart/k8s-usage-reporter/pkg/models"
	"github.com/opscart/k8s-usage-reporter/pkg/output"
	"github.com/opscart/k8s-usage-reporter/pkg/preprocess"
	"github.com/opscart/k8s-usage-reporter/pkg/reporter"
	"github.com/opscart/k8s-usage-reporter/pkg/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/types"
)

const (
	StageBuild = "build"
	StageWrite = "write"
)

// Failure is a partition that was skipped
type Failure struct {
	Key   types.NamespacedName
	Stage string
	Err   error
}

// Result describes a finished run
type Result struct {
	RunID     string
	Input     string
	Written   []string
	Failed    []Failure
	Summaries []models.ContainerSummary
	IndexPath string
}

// Runner wires the stages together. Store, Metrics and MetricsFile are optional.
// Out receives one line per written report and defaults to stdout.
type Runner struct {
	Preprocessor preprocess.Preprocessor
	Builder      *reporter.Builder
	Output       output.Handler
	Store        storage.Store
	Metrics      *metrics.Metrics
	MetricsFile  string
	Logger       *zap.Logger
	Out          io.Writer

	now func() time.Time
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return os.Stdout
	}
	return r.Out
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Run executes the pipeline. Preprocessing, load and grouping errors abort
// the run before anything is written; per-container failures are collected
// in Result.Failed.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.logger()
	start := r.clock()
	result := &Result{RunID: uuid.New().String()}

	input, err := r.Preprocessor.Run(ctx)
	if err != nil {
		return nil, err
	}
	result.Input = input
	log.Debug("preprocessing complete", zap.String("input", input))

	frame, err := dataset.Load(input)
	if err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		r.Metrics.RowsLoaded.Add(float64(frame.Len()))
	}

	partitions, err := dataset.GroupBy(frame)
	if err != nil {
		return nil, err
	}
	if r.Metrics != nil {
		r.Metrics.Partitions.Set(float64(len(partitions)))
	}
	log.Info("loaded usage data",
		zap.String("run_id", result.RunID),
		zap.Int("rows", frame.Len()),
		zap.Int("containers", len(partitions)))

	if err := r.Output.EnsureDir(); err != nil {
		return nil, err
	}

	for _, p := range partitions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		report, err := r.Builder.Build(p)
		if err != nil {
			r.fail(result, p.Key, StageBuild, err)
			continue
		}

		path, err := r.Output.WriteReport(report)
		if err != nil {
			r.fail(result, p.Key, StageWrite, err)
			continue
		}

		fmt.Fprintf(r.out(), "Generated report for %s/%s: %s\n", p.Key.Namespace, p.Key.Name, path)
		log.Debug("report written", zap.Stringer("key", p.Key), zap.String("path", path))
		if r.Metrics != nil {
			r.Metrics.ReportsGenerated.WithLabelValues(p.Key.Namespace).Inc()
		}
		result.Written = append(result.Written, path)
		result.Summaries = append(result.Summaries, report.ContainerSummary(result.RunID, path, r.clock()))
	}

	if err := r.finish(ctx, result, start); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) fail(result *Result, key types.NamespacedName, stage string, err error) {
	r.logger().Warn("skipping container",
		zap.String("namespace", key.Namespace),
		zap.String("container", key.Name),
		zap.String("stage", stage),
		zap.Error(err))
	if r.Metrics != nil {
		r.Metrics.PartitionFailures.WithLabelValues(stage).Inc()
	}
	result.Failed = append(result.Failed, Failure{Key: key, Stage: stage, Err: err})
}

// finish writes the index, persists summaries and dumps metrics
func (r *Runner) finish(ctx context.Context, result *Result, start time.Time) error {
	log := r.logger()

	index, err := r.Output.WriteIndex(result.Summaries)
	if err != nil {
		return errors.Wrap(err, "failed to write summary index")
	}
	result.IndexPath = index

	if r.Store != nil && len(result.Summaries) > 0 {
		if err := r.Store.SaveSummaries(ctx, result.Summaries); err != nil {
			return errors.Wrap(err, "failed to save summaries")
		}
		log.Info("saved summaries", zap.Int("count", len(result.Summaries)))
	}

	if r.Metrics != nil {
		r.Metrics.ObserveRun(start, r.clock())
		if r.MetricsFile != "" {
			if err := r.Metrics.WriteTextfile(r.MetricsFile); err != nil {
				return err
			}
		}
	}

	log.Info("run complete",
		zap.String("run_id", result.RunID),
		zap.Int("written", len(result.Written)),
		zap.Int("failed", len(result.Failed)))
	return nil
}
