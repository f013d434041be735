// Package store persists workflow definitions as JSON files, one per
// workflow, under a single directory. It keeps an in-memory cache, writes
// atomically, and publishes change events to the bus.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/baton-ai/baton/internal/core"
	"github.com/baton-ai/baton/internal/events"
	"github.com/baton-ai/baton/internal/fsutil"
	"github.com/baton-ai/baton/internal/logging"
)

// CorruptFile records a store file that failed to parse during load.
type CorruptFile struct {
	Path string
	Err  error
}

// Store manages workflow definitions on disk.
type Store struct {
	dir string
	bus *events.EventBus
	log *logging.Logger

	mu      sync.RWMutex
	cache   map[string]*core.Workflow
	corrupt []CorruptFile

	selfMu     sync.Mutex
	selfWrites map[string]time.Time

	watchDone chan struct{}
	watchOnce sync.Once

	seed bool
}

// Option configures a Store.
type Option func(*Store)

// WithoutSeed disables writing the example workflows when the store
// directory is first created.
func WithoutSeed() Option {
	return func(s *Store) { s.seed = false }
}

// New opens the store rooted at dir, creating it on first use. A freshly
// created directory is seeded with the default workflow templates unless
// WithoutSeed is given. Corrupt files are skipped and recorded, not
// fatal. bus may be nil.
func New(dir string, bus *events.EventBus, log *logging.Logger, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, core.ErrValidation(core.CodeInvalidWorkflow, "store directory cannot be empty")
	}
	if log == nil {
		log = logging.NewNop()
	}

	s := &Store{
		dir:        dir,
		bus:        bus,
		log:        log,
		cache:      make(map[string]*core.Workflow),
		selfWrites: make(map[string]time.Time),
		watchDone:  make(chan struct{}),
		seed:       true,
	}
	for _, opt := range opts {
		opt(s)
	}

	_, statErr := os.Stat(dir)
	firstUse := os.IsNotExist(statErr)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("creating store directory %s", dir)).WithCause(err)
	}

	if firstUse && s.seed {
		for _, wf := range Defaults() {
			if err := s.Save(wf); err != nil {
				return nil, err
			}
		}
		return s, nil
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

// loadAll parses every workflow file in the directory into the cache.
func (s *Store) loadAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("reading store directory %s", s.dir)).WithCause(err)
	}

	var (
		loadMu  sync.Mutex
		loaded  = make(map[string]*core.Workflow)
		corrupt []CorruptFile
	)

	var g errgroup.Group
	g.SetLimit(8)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		g.Go(func() error {
			wf, err := readWorkflowFile(path)
			loadMu.Lock()
			defer loadMu.Unlock()
			if err != nil {
				corrupt = append(corrupt, CorruptFile{Path: path, Err: err})
				s.log.Warn("skipping corrupt workflow file", "path", path, "error", err)
				return nil
			}
			loaded[wf.ID] = wf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(corrupt, func(i, j int) bool { return corrupt[i].Path < corrupt[j].Path })

	s.mu.Lock()
	s.cache = loaded
	s.corrupt = corrupt
	s.mu.Unlock()
	return nil
}

// readWorkflowFile reads and validates a single workflow file.
func readWorkflowFile(path string) (*core.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("reading %s", path)).WithCause(err)
	}
	var wf core.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, core.ErrIO(core.CodeStoreCorrupt,
			fmt.Sprintf("parsing %s", path)).WithCause(err).WithDetail("path", path)
	}
	wf.Normalize()
	if wf.ID == "" {
		return nil, core.ErrIO(core.CodeStoreCorrupt,
			fmt.Sprintf("parsing %s", path)).WithDetail("path", path).
			WithDetail("reason", "missing workflow id")
	}
	return &wf, nil
}

// Dir returns the directory the store persists into.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path a workflow id is stored at.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Corrupt returns the files that failed to parse during the last full load.
func (s *Store) Corrupt() []CorruptFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CorruptFile, len(s.corrupt))
	copy(out, s.corrupt)
	return out
}

// Get returns a copy of the workflow with the given id.
func (s *Store) Get(id string) (*core.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wf, ok := s.cache[id]
	if !ok {
		return nil, core.ErrNotFound("workflow", id)
	}
	return wf.Clone(), nil
}

// List returns copies of all workflows, sorted by name.
func (s *Store) List() []*core.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Workflow, 0, len(s.cache))
	for _, wf := range s.cache {
		out = append(out, wf.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Create builds a new empty workflow and persists it. The id is derived
// from the name; an existing workflow with the same id is a conflict.
func (s *Store) Create(name, description string, trigger core.Trigger) (*core.Workflow, error) {
	if strings.TrimSpace(name) == "" {
		return nil, core.ErrValidation(core.CodeEmptyName, "workflow name cannot be empty")
	}
	wf := core.NewWorkflow(name, description, trigger)

	s.mu.RLock()
	_, exists := s.cache[wf.ID]
	s.mu.RUnlock()
	if exists {
		return nil, core.ErrConflict(core.CodeWorkflowExists,
			fmt.Sprintf("workflow %s already exists", wf.ID))
	}

	if err := s.Save(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Save validates and persists a workflow, refreshing its updated_at stamp.
func (s *Store) Save(wf *core.Workflow) error {
	if wf == nil {
		return core.ErrValidation(core.CodeInvalidWorkflow, "workflow cannot be nil")
	}
	wf.Normalize()
	if err := wf.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if wf.CreatedAt.IsZero() {
		wf.CreatedAt = now
	}
	wf.UpdatedAt = now

	data, err := json.MarshalIndent(wf, "", "  ")
	if err != nil {
		return core.ErrInternal("encoding workflow").WithCause(err)
	}

	path := s.Path(wf.ID)
	s.markSelfWrite(path)
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("writing %s", path)).WithCause(err)
	}

	s.mu.Lock()
	s.cache[wf.ID] = wf.Clone()
	s.mu.Unlock()

	s.log.Debug("workflow saved", "workflow_id", wf.ID, "steps", len(wf.Steps))
	if s.bus != nil {
		s.bus.Publish(events.NewWorkflowSavedEvent(wf.ID, wf.Name, len(wf.Steps)))
	}
	return nil
}

// Delete removes a workflow from disk and the cache.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.cache[id]
	if ok {
		delete(s.cache, id)
	}
	s.mu.Unlock()
	if !ok {
		return core.ErrNotFound("workflow", id)
	}

	path := s.Path(id)
	s.markSelfWrite(path)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.ErrIO(core.CodeStoreIO,
			fmt.Sprintf("removing %s", path)).WithCause(err)
	}

	s.log.Debug("workflow deleted", "workflow_id", id)
	if s.bus != nil {
		s.bus.Publish(events.NewWorkflowDeletedEvent(id))
	}
	return nil
}

// AddStep appends a step to a stored workflow and persists the result.
// The updated workflow is returned.
func (s *Store) AddStep(workflowID string, step *core.WorkflowStep) (*core.Workflow, error) {
	wf, err := s.Get(workflowID)
	if err != nil {
		return nil, err
	}
	if _, err := wf.AddStep(step); err != nil {
		return nil, err
	}
	if err := s.Save(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// ConnectSteps adds an edge between two steps of a stored workflow and
// persists the result. The updated workflow is returned.
func (s *Store) ConnectSteps(workflowID, from, to string, cond *core.Condition) (*core.Workflow, error) {
	wf, err := s.Get(workflowID)
	if err != nil {
		return nil, err
	}
	if err := wf.ConnectSteps(from, to, cond); err != nil {
		return nil, err
	}
	if err := s.Save(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// markSelfWrite records a path we are about to touch so the watcher can
// tell our own writes apart from external edits.
func (s *Store) markSelfWrite(path string) {
	s.selfMu.Lock()
	s.selfWrites[path] = time.Now()
	s.selfMu.Unlock()
}

// isSelfWrite reports whether the path was touched by us recently.
func (s *Store) isSelfWrite(path string) bool {
	s.selfMu.Lock()
	defer s.selfMu.Unlock()
	ts, ok := s.selfWrites[path]
	if !ok {
		return false
	}
	if time.Since(ts) > 2*time.Second {
		delete(s.selfWrites, path)
		return false
	}
	return true
}
