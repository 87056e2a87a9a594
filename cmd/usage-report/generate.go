package main

import (
	"context"
	"fmt"
	"io"

	"github.com/opscart/k8s-usage-reporter/pkg/analyzer"
	"github.com/opscart/k8s-usage-reporter/pkg/config"
	"github.com/opscart/k8s-usage-reporter/pkg/metrics"
	"github.com/opscart/k8s-usage-reporter/pkg/output"
	"github.com/opscart/k8s-usage-reporter/pkg/pipeline"
	"github.com/opscart/k8s-usage-reporter/pkg/preprocess"
	"github.com/opscart/k8s-usage-reporter/pkg/reporter"
	"github.com/opscart/k8s-usage-reporter/pkg/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func newGenerateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Preprocess the raw exports and write one HTML report per container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, cmd.OutOrStdout())
		},
	}
	addGenerateFlags(cmd.Flags(), a.cfg)
	return cmd
}

func addGenerateFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.InputPath, "input", cfg.InputPath, "Merged CSV the preprocessor produces")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for the HTML reports")
	fs.StringVar(&cfg.Preprocessor, "preprocessor", cfg.Preprocessor, "Preprocessing: script, native, or none")
	fs.StringVar(&cfg.PreprocessCommand, "preprocess-command", cfg.PreprocessCommand, "Command the script preprocessor runs")
	fs.StringVar(&cfg.PreprocessDir, "preprocess-dir", cfg.PreprocessDir, "Working directory of the preprocess command")
	fs.StringSliceVar(&cfg.MergeInputs, "merge-inputs", cfg.MergeInputs, "Raw CSV files or globs the native preprocessor merges")
	fs.StringVar(&cfg.SummaryMode, "summary-mode", cfg.SummaryMode, "Summary statistics: legacy or corrected")
	fs.BoolVar(&cfg.StorageEnabled, "save", cfg.StorageEnabled, "Save container summaries to the store")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write run metrics to this Prometheus textfile")
}

func runGenerate(ctx context.Context, a *app, out io.Writer) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	runner := &pipeline.Runner{
		Preprocessor: newPreprocessor(cfg),
		Builder:      reporter.New(analyzer.SummaryMode(cfg.SummaryMode)),
		Output:       output.NewFileHandler(cfg.OutputDir),
		Metrics:      metrics.New(),
		MetricsFile:  cfg.MetricsFile,
		Logger:       a.logger,
		Out:          out,
	}

	if cfg.StorageEnabled {
		store, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		runner.Store = store
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if len(result.Failed) > 0 {
		a.logger.Warn("some containers were skipped", zap.Int("count", len(result.Failed)))
	}
	fmt.Fprintf(out, "Summary written to %s\n", result.IndexPath)
	return nil
}

func newPreprocessor(cfg *config.Config) preprocess.Preprocessor {
	switch cfg.Preprocessor {
	case config.PreprocessorNative:
		return &preprocess.MergeSorter{Inputs: cfg.MergeInputs, Output: cfg.InputPath}
	case config.PreprocessorNone:
		return preprocess.Static{Path: cfg.InputPath}
	default:
		// a relative input is resolved against the script's directory
		return &preprocess.ScriptPreprocessor{
			Command: cfg.PreprocessCommand,
			Dir:     cfg.PreprocessDir,
			Output:  cfg.InputPath,
		}
	}
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	return storage.NewStore(ctx, storage.Config{
		Type: cfg.StoreType,
		Path: cfg.SQLitePath,
		URL:  cfg.DatabaseURL,
	})
}
