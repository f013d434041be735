package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/baton-ai/baton/internal/runner"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect workflow runs",
}

var runsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived terminal runs, newest first",
	Long: `List finished runs from the archive.

Live runs exist only inside a running server; the archive records every
run that reached a terminal status.`,
	RunE: runRunsHistory,
}

var (
	runsWorkflow string
	runsLimit    int
	runsOutput   string
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsHistoryCmd)

	runsHistoryCmd.Flags().StringVar(&runsWorkflow, "workflow", "", "Only runs of this workflow")
	runsHistoryCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum rows")
	runsHistoryCmd.Flags().StringVarP(&runsOutput, "output", "o", "", "Output mode (plain, json)")
}

func runRunsHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		fmt.Println("Run history is disabled (history.enabled: false).")
		return nil
	}

	history, err := runner.NewHistoryStore(historyPath(cfg))
	if err != nil {
		return fmt.Errorf("opening run archive: %w", err)
	}
	defer func() { _ = history.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	runs, err := history.Recent(ctx, runsLimit, runsWorkflow)
	if err != nil {
		return err
	}

	if runsOutput == "json" {
		return printJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No archived runs.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWORKFLOW\tSTATUS\tSTEPS\tSTARTED\tFINISHED")
	fmt.Fprintln(w, "--\t--------\t------\t-----\t-------\t--------")

	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			truncateString(run.ID, 12),
			run.WorkflowID,
			run.Status,
			len(run.CompletedSteps),
			run.StartedAt.Local().Format(time.DateTime),
			finished,
		)
	}
	return w.Flush()
}
