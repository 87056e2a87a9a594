package main

import (
	"context"
	"fmt"
	"time"

	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/datasource"
	"github.com/opscart/k8s-usage-reporter/pkg/scanner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCollectCommand(a *app) *cobra.Command {
	var namespaces []string
	out := "usage_raw.csv"

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Append a metrics-server usage snapshot to a raw CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scanner.New(a.cfg.Kubeconfig, a.logger)
			if err != nil {
				return err
			}
			samples, err := s.Snapshot(cmd.Context(), namespaces)
			if err != nil {
				return err
			}
			if err := dataset.AppendSamples(out, samples); err != nil {
				return err
			}
			fmt.Printf("Appended %d rows to %s\n", len(samples), out)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&namespaces, "namespace", "n", nil, "Namespaces to sample (default all)")
	cmd.Flags().StringVar(&a.cfg.Kubeconfig, "kubeconfig", a.cfg.Kubeconfig, "Path to the kubeconfig file")
	cmd.Flags().StringVar(&out, "out", out, "Raw CSV to append to")
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	var namespace string
	out := "usage_export.csv"

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export per-container usage history from Prometheus to a raw CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			source, err := datasource.NewPrometheusSource(a.cfg.PrometheusURL, a.logger)
			if err != nil {
				return err
			}
			n, err := exportSamples(cmd.Context(), source, a.cfg.ExportWindow, a.cfg.ExportStep, namespace, out, a.logger)
			if err != nil {
				return err
			}
			fmt.Printf("Appended %d rows to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "Namespace to export (default all)")
	cmd.Flags().StringVar(&a.cfg.PrometheusURL, "prometheus-url", a.cfg.PrometheusURL, "Prometheus server URL")
	cmd.Flags().DurationVar(&a.cfg.ExportWindow, "window", a.cfg.ExportWindow, "How far back to export")
	cmd.Flags().DurationVar(&a.cfg.ExportStep, "step", a.cfg.ExportStep, "Sample resolution")
	cmd.Flags().StringVar(&out, "out", out, "Raw CSV to append to")
	return cmd
}

// exportSamples pulls one window of samples from source and appends them to out.
func exportSamples(ctx context.Context, source datasource.SampleSource, window, step time.Duration, namespace, out string, logger *zap.Logger) (int, error) {
	if !source.IsAvailable(ctx) {
		return 0, fmt.Errorf("%s source not reachable", source.Name())
	}

	start := time.Now()
	samples, err := source.RangeSamples(ctx, window, step, namespace)
	if err != nil {
		return 0, err
	}
	if err := dataset.AppendSamples(out, samples); err != nil {
		return 0, err
	}
	logger.Info("export complete",
		zap.String("source", source.Name()),
		zap.Int("rows", len(samples)),
		zap.Duration("took", time.Since(start)))
	return len(samples), nil
}
