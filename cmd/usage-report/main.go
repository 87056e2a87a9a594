// usage-report turns merged container usage CSV exports into one HTML report
// per (namespace, container), and collects the raw exports from a cluster.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opscart/k8s-usage-reporter/pkg/config"
	"github.com/opscart/k8s-usage-reporter/pkg/dataset"
	"github.com/opscart/k8s-usage-reporter/pkg/logging"
	"github.com/opscart/k8s-usage-reporter/pkg/preprocess"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

// app carries the resolved configuration and logger into subcommands
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.NewConfig(), logger: zap.NewNop()}
	loader := newConfigLoader(os.Getenv(configEnv))

	cmd := &cobra.Command{
		Use:           "usage-report",
		Short:         "Per-container resource usage reports",
		Long:          "usage-report groups container usage samples by namespace and container and writes an interactive HTML report for each.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loader.apply(cmd.Flags()); err != nil {
				return err
			}
			logger, err := logging.New(a.cfg.LogLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), a, cmd.OutOrStdout())
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level (debug, info, warn, error)")
	pf.StringVar(&a.cfg.StoreType, "store", a.cfg.StoreType, "Summary store: postgres or sqlite")
	pf.StringVar(&a.cfg.DatabaseURL, "database-url", a.cfg.DatabaseURL, "PostgreSQL connection string")
	pf.StringVar(&a.cfg.SQLitePath, "sqlite-path", a.cfg.SQLitePath, "SQLite database file")
	addGenerateFlags(cmd.Flags(), a.cfg)

	generateCmd := newGenerateCommand(a)
	collectCmd := newCollectCommand(a)
	exportCmd := newExportCommand(a)
	historyCmd := newHistoryCommand(a)
	cmd.AddCommand(generateCmd, collectCmd, exportCmd, historyCmd)

	cmd.Example = `  # Run the merge script, then write container_reports/*.html
  usage-report

  # Merge raw exports natively and keep summaries in SQLite
  usage-report generate --preprocessor native --merge-inputs 'raw/*.csv' --save

  # Append a metrics-server snapshot to the raw export
  usage-report collect -n default --out raw/usage.csv`

	return cmd
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()

	var notFound *preprocess.PreprocessNotFoundError
	var loadErr *dataset.LoadError
	switch {
	case errors.As(err, &notFound):
		message = fmt.Sprintf("%s\nHint: run from the directory containing the merge script, or use --preprocessor native.", err)
	case errors.As(err, &loadErr) && loadErr.Op == "open":
		message = fmt.Sprintf("%s\nHint: set --input or USAGE_REPORT_INPUT to the merged CSV.", err)
	case errors.Is(err, context.DeadlineExceeded):
		message = fmt.Sprintf("%s\nHint: verify network connectivity to the cluster or Prometheus.", err)
	case apierrors.IsUnauthorized(err):
		message = fmt.Sprintf("%s\nHint: kubeconfig credentials were rejected. Run 'kubectl config view' to confirm the active user.", err)
	case apierrors.IsForbidden(err):
		message = fmt.Sprintf("%s\nHint: listing pods and pods.metrics.k8s.io requires read access in each namespace.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
