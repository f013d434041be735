// Package export writes compiled workflow artifacts to the fixed path
// conventions the agent platform syncs from.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/baton-ai/baton/internal/compile"
	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/fsutil"
	"github.com/baton-ai/baton/internal/graph"
	"github.com/baton-ai/baton/internal/logging"
	"github.com/baton-ai/baton/internal/store"
)

// Manager compiles and places export artifacts under a root directory.
type Manager struct {
	root     string
	store    *store.Store
	compiler *compile.Compiler
	log      *logging.Logger
}

// New creates an export manager writing under root.
func New(root string, st *store.Store, compiler *compile.Compiler, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{root: root, store: st, compiler: compiler, log: log}
}

// Root returns the export root directory.
func (m *Manager) Root() string { return m.root }

// PathFor returns the artifact path for a workflow id and kind.
func (m *Manager) PathFor(id string, kind compile.Kind) string {
	switch kind {
	case compile.KindSkill:
		return filepath.Join(m.root, "skills", id, "SKILL.md")
	case compile.KindCommand:
		return filepath.Join(m.root, "plugins", "agent-sync", "commands", id+".md")
	case compile.KindPrompt:
		return filepath.Join(m.root, "workflows", id+".prompt.md")
	}
	return ""
}

// Export compiles one artifact and writes it, creating parent directories
// and overwriting any previous version. Returns the path written.
func (m *Manager) Export(id string, kind compile.Kind) (string, error) {
	if !kind.IsValid() {
		return "", core.ErrValidation(core.CodeInvalidExport,
			fmt.Sprintf("unknown export kind %q", kind))
	}
	wf, err := m.store.Get(id)
	if err != nil {
		return "", err
	}

	body, err := m.compiler.Artifact(wf, kind, m.store.Path(id))
	if err != nil {
		return "", err
	}

	path := m.PathFor(id, kind)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", core.ErrIO(core.CodeExportIO,
			fmt.Sprintf("creating export directory for %s", path)).WithCause(err)
	}
	if err := fsutil.WriteFileAtomic(path, []byte(body), 0644); err != nil {
		return "", core.ErrIO(core.CodeExportIO,
			fmt.Sprintf("writing %s", path)).WithCause(err)
	}

	m.log.Info("exported workflow artifact", "workflow_id", id, "kind", string(kind), "path", path)
	return path, nil
}

// ExportAll writes every artifact kind for a workflow.
func (m *Manager) ExportAll(id string) ([]string, error) {
	paths := make([]string, 0, len(compile.Kinds()))
	for _, kind := range compile.Kinds() {
		path, err := m.Export(id, kind)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ExportAuto follows the complexity analyzer's recommendation: skill,
// command, or both.
func (m *Manager) ExportAuto(id string) ([]string, error) {
	wf, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}

	report := graph.Analyze(wf)
	var kinds []compile.Kind
	switch report.RecommendedExport {
	case graph.RecommendSkill:
		kinds = []compile.Kind{compile.KindSkill}
	case graph.RecommendCommand:
		kinds = []compile.Kind{compile.KindCommand}
	default:
		kinds = []compile.Kind{compile.KindSkill, compile.KindCommand}
	}

	paths := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		path, err := m.Export(id, kind)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DeleteExports removes whichever artifacts exist for a workflow. The
// skill's parent directory is pruned when it ends up empty. Deleting a
// workflow that was never exported is not an error.
func (m *Manager) DeleteExports(id string) error {
	for _, kind := range compile.Kinds() {
		path := m.PathFor(id, kind)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return core.ErrIO(core.CodeExportIO,
				fmt.Sprintf("removing %s", path)).WithCause(err)
		}
	}

	// Best-effort prune of skills/{id}; a non-empty directory stays.
	skillDir := filepath.Dir(m.PathFor(id, compile.KindSkill))
	if err := os.Remove(skillDir); err != nil && !os.IsNotExist(err) {
		m.log.Debug("leaving skill directory in place", "dir", skillDir, "reason", err)
	}

	m.log.Info("removed workflow artifacts", "workflow_id", id)
	return nil
}

// Status reports which artifacts currently exist for a workflow.
type Status struct {
	WorkflowID string            `json:"workflow_id"`
	Skill      bool              `json:"skill"`
	Command    bool              `json:"command"`
	Prompt     bool              `json:"prompt"`
	Paths      map[string]string `json:"paths"`
}

// Status checks artifact existence without reading content.
func (m *Manager) Status(id string) Status {
	status := Status{
		WorkflowID: id,
		Paths:      make(map[string]string, len(compile.Kinds())),
	}
	for _, kind := range compile.Kinds() {
		path := m.PathFor(id, kind)
		status.Paths[string(kind)] = path
		_, err := os.Stat(path)
		exists := err == nil
		switch kind {
		case compile.KindSkill:
			status.Skill = exists
		case compile.KindCommand:
			status.Command = exists
		case compile.KindPrompt:
			status.Prompt = exists
		}
	}
	return status
}
