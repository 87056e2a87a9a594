package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	limit := 10

	cmd := &cobra.Command{
		Use:   "history <namespace>",
		Short: "Show stored container summaries for a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace := args[0]
			ctx := cmd.Context()

			store, err := openStore(ctx, a.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.ListSummaries(ctx, namespace, limit)
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Printf("No summaries found for namespace: %s\n", namespace)
				return nil
			}

			stats, err := store.GetRunStats(ctx, namespace)
			if err != nil {
				return err
			}

			fmt.Printf("Namespace '%s': %d runs, %d containers, last run %s\n\n",
				namespace, stats.Runs, stats.Containers, stats.LastGenerated.Format("2006-01-02 15:04:05"))
			for i, s := range summaries {
				fmt.Printf("%d. %s (run %s)\n", i+1, s.Container, s.RunID)
				fmt.Printf("   Window: %s to %s (%d samples)\n", s.StartTime, s.EndTime, s.SampleCount)
				fmt.Printf("   CPU: avg %.6f, p95 %.6f (%s)\n", s.AvgCPUUsage, s.P95CPUUsage, s.CPUPattern)
				fmt.Printf("   Memory: avg %.2f MB, p95 %.2f MB (%s)\n", s.AvgMemoryMB, s.P95MemoryMB, s.MemoryPattern)
				fmt.Printf("   Report: %s\n", s.ReportPath)
				fmt.Printf("   Created: %s\n", s.CreatedAt.Format("2006-01-02 15:04:05"))
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", limit, "Number of summaries to show")
	return cmd
}
