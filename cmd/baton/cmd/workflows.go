package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/baton-ai/baton/internal/graph"
)

var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Inspect and manage workflow definitions",
	Long: `Inspect and manage the workflow definitions in the store.

Definitions live as JSON files under the store directory
(~/.claude/workflows by default) and can also be edited there directly.`,
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow definitions",
	RunE:  runWorkflowsList,
}

var workflowsShowCmd = &cobra.Command{
	Use:   "show <workflow-id>",
	Short: "Print one workflow definition as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsShow,
}

var workflowsDiagramCmd = &cobra.Command{
	Use:   "diagram <workflow-id>",
	Short: "Print the ASCII flow diagram",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsDiagram,
}

var workflowsDeleteCmd = &cobra.Command{
	Use:   "delete <workflow-id>",
	Short: "Delete a workflow definition and its file",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflowsDelete,
}

var workflowsOutput string

func init() {
	rootCmd.AddCommand(workflowsCmd)
	workflowsCmd.AddCommand(workflowsListCmd)
	workflowsCmd.AddCommand(workflowsShowCmd)
	workflowsCmd.AddCommand(workflowsDiagramCmd)
	workflowsCmd.AddCommand(workflowsDeleteCmd)

	workflowsListCmd.Flags().StringVarP(&workflowsOutput, "output", "o", "", "Output mode (plain, json)")
}

func runWorkflowsList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening workflow store: %w", err)
	}

	workflows := st.List()

	if workflowsOutput == "json" {
		return printJSON(workflows)
	}

	if len(workflows) == 0 {
		fmt.Println("No workflows found.")
		fmt.Println("Create one through the API or drop a JSON file into", cfg.Store.Dir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTRIGGER\tSTEPS\tUPDATED")
	fmt.Fprintln(w, "--\t----\t-------\t-----\t-------")

	for _, wf := range workflows {
		trigger := string(wf.Trigger)
		if wf.TriggerPattern != "" {
			trigger += " (" + wf.TriggerPattern + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			wf.ID,
			truncateString(wf.Name, 40),
			trigger,
			len(wf.Steps),
			wf.UpdatedAt.Local().Format(time.DateTime),
		)
	}
	return w.Flush()
}

func runWorkflowsShow(_ *cobra.Command, args []string) error {
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
	return printJSON(wf)
}

func runWorkflowsDiagram(_ *cobra.Command, args []string) error {
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
	fmt.Print(graph.Diagram(wf))
	return nil
}

func runWorkflowsDelete(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening workflow store: %w", err)
	}

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Println("Deleted workflow", args[0])
	return nil
}
