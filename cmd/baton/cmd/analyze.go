package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baton-ai/baton/internal/graph"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <workflow-id>",
	Short: "Score a workflow's complexity and recommend an export",
	Long: `Analyze a workflow graph and report its complexity.

The score weighs step count, branching, conditional edges and agent
variety, and drives the recommendation between a skill (rich, multi-file)
and a command (single slash-command file) export.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeOutput string

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Output mode (plain, json)")
}

func runAnalyze(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening workflow store: %w", err)
	}

	wf, err := st.Get(args[0])
	if err != nil {
		return err
	}
	report := graph.Analyze(wf)

	if analyzeOutput == "json" {
		return printJSON(report)
	}

	fmt.Printf("Workflow:       %s (%s)\n", wf.Name, wf.ID)
	fmt.Printf("Complexity:     %d\n", report.Score)
	fmt.Printf("Recommendation: %s\n", report.RecommendedExport)
	fmt.Println()
	fmt.Println("Reasons:")
	for _, reason := range report.Reasons {
		fmt.Println("  -", reason)
	}
	if len(report.ModelReferences) > 0 {
		fmt.Println()
		fmt.Printf("Model references: %s\n", strings.Join(report.ModelReferences, ", "))
	}
	return nil
}
