// Package agents keeps the advisory catalog of agent names used to populate
// step pickers and to suggest handoff targets. Names are never validated
// against a live platform; the catalog is informational.
package agents

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/logging"
)

// Agent is one catalog entry.
type Agent struct {
	Name        string `yaml:"name" json:"agent_name"`
	Description string `yaml:"description" json:"description"`
}

// catalogFile is the YAML shape of an external catalog.
type catalogFile struct {
	Agents []Agent `yaml:"agents"`
}

// Registry holds the agent catalog.
type Registry struct {
	mu     sync.RWMutex
	agents []Agent
	byName map[string]Agent
	log    *logging.Logger
}

// NewRegistry creates a registry populated with the built-in catalog.
func NewRegistry(log *logging.Logger) *Registry {
	if log == nil {
		log = logging.NewNop()
	}
	r := &Registry{log: log}
	r.replace(defaultCatalog())
	return r
}

// Load creates a registry from a YAML catalog file. An empty path yields
// the built-in catalog.
func Load(path string, log *logging.Logger) (*Registry, error) {
	r := NewRegistry(log)
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("reading agent catalog %s", path)).WithCause(err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, core.ErrValidation(core.CodeInvalidCatalog,
			fmt.Sprintf("parsing agent catalog %s", path)).WithCause(err)
	}
	if len(file.Agents) == 0 {
		return nil, core.ErrValidation(core.CodeInvalidCatalog,
			fmt.Sprintf("agent catalog %s lists no agents", path))
	}
	for _, a := range file.Agents {
		if a.Name == "" {
			return nil, core.ErrValidation(core.CodeInvalidCatalog,
				fmt.Sprintf("agent catalog %s has an entry without a name", path))
		}
	}

	r.replace(file.Agents)
	r.log.Info("loaded agent catalog", "path", path, "agents", len(file.Agents))
	return r, nil
}

func (r *Registry) replace(agents []Agent) {
	byName := make(map[string]Agent, len(agents))
	deduped := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if _, ok := byName[a.Name]; ok {
			continue
		}
		byName[a.Name] = a
		deduped = append(deduped, a)
	}

	r.mu.Lock()
	r.agents = deduped
	r.byName = byName
	r.mu.Unlock()
}

// List returns the catalog sorted by name.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, len(r.agents))
	copy(out, r.agents)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a catalog entry by name.
func (r *Registry) Get(name string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[name]
	return a, ok
}

// Names returns the catalog names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.agents))
	for _, a := range r.agents {
		names = append(names, a.Name)
	}
	return names
}

// defaultCatalog lists the agents referenced by the seeded workflows and
// the suggestion table.
func defaultCatalog() []Agent {
	return []Agent{
		{Name: "code-explorer", Description: "Maps unfamiliar codebases and locates relevant areas"},
		{Name: "master-developer", Description: "General-purpose implementation across languages"},
		{Name: "code-reviewer", Description: "Reviews diffs for correctness and style"},
		{Name: "quality-reviewer", Description: "Checks code quality, conventions and maintainability"},
		{Name: "security-reviewer", Description: "Finds vulnerabilities and unsafe patterns"},
		{Name: "test-engineer", Description: "Writes and maintains automated tests"},
		{Name: "project-planner", Description: "Breaks goals into ordered implementation plans"},
		{Name: "task-decomposer", Description: "Splits large tasks into small actionable ones"},
		{Name: "python-dev", Description: "Python implementation specialist"},
		{Name: "typescript-dev", Description: "TypeScript and Node implementation specialist"},
		{Name: "frontend-design", Description: "UI structure, styling and accessibility"},
		{Name: "db-engineer", Description: "Schema design, queries and migrations"},
		{Name: "devops-engineer", Description: "CI/CD pipelines and release automation"},
		{Name: "infra-engineer", Description: "Provisioning, networking and runtime infrastructure"},
		{Name: "doc-curator", Description: "Keeps documentation accurate and current"},
	}
}
