package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/baton-ai/baton/internal/compile"
	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/export"
	"github.com/baton-ai/baton/internal/logging"
)

var exportCmd = &cobra.Command{
	Use:   "export <workflow-id>",
	Short: "Write workflow artifacts under the export root",
	Long: `Compile a workflow and write its artifacts.

Kinds:
  skill    skills/<id>/SKILL.md
  command  plugins/agent-sync/commands/<id>.md
  prompt   workflows/<id>.prompt.md
  all      every kind
  auto     follow the analyzer's recommendation (default)`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var exportStatusCmd = &cobra.Command{
	Use:   "status <workflow-id>",
	Short: "Report which artifacts exist on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportStatus,
}

var exportCleanCmd = &cobra.Command{
	Use:   "clean <workflow-id>",
	Short: "Remove all artifacts for a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportClean,
}

var exportKind string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportStatusCmd)
	exportCmd.AddCommand(exportCleanCmd)

	exportCmd.Flags().StringVarP(&exportKind, "kind", "k", "auto",
		"Artifact kind (skill, command, prompt, all, auto)")
}

func exportManager() (*export.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening workflow store: %w", err)
	}
	compiler, err := compile.New()
	if err != nil {
		return nil, fmt.Errorf("loading artifact templates: %w", err)
	}
	return export.New(cfg.Export.Root, st, compiler, logging.NewNop()), nil
}

func runExport(_ *cobra.Command, args []string) error {
	mgr, err := exportManager()
	if err != nil {
		return err
	}
	id := args[0]

	var paths []string
	switch exportKind {
	case "auto":
		paths, err = mgr.ExportAuto(id)
	case "all":
		paths, err = mgr.ExportAll(id)
	default:
		kind := compile.Kind(exportKind)
		if !kind.IsValid() {
			return core.ErrValidation(core.CodeInvalidExport,
				fmt.Sprintf("unknown export kind %q", exportKind))
		}
		var path string
		path, err = mgr.Export(id, kind)
		paths = []string{path}
	}
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Println("Wrote", path)
	}
	return nil
}

func runExportStatus(_ *cobra.Command, args []string) error {
	mgr, err := exportManager()
	if err != nil {
		return err
	}

	status := mgr.Status(args[0])
	mark := func(ok bool) string {
		if ok {
			return "present"
		}
		return "absent"
	}

	fmt.Printf("skill:   %s\n", mark(status.Skill))
	fmt.Printf("command: %s\n", mark(status.Command))
	fmt.Printf("prompt:  %s\n", mark(status.Prompt))
	for _, kind := range compile.Kinds() {
		fmt.Printf("  %s -> %s\n", kind, status.Paths[string(kind)])
	}
	return nil
}

func runExportClean(_ *cobra.Command, args []string) error {
	mgr, err := exportManager()
	if err != nil {
		return err
	}
	if err := mgr.DeleteExports(args[0]); err != nil {
		return err
	}
	fmt.Println("Removed artifacts for", args[0])
	return nil
}
