package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/baton-ai/baton/internal/events"
)

// Watch observes the store directory for external edits and keeps the cache
// in sync, publishing saved/deleted events for changes not made through this
// process. It blocks until ctx is cancelled or the store is closed.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return err
	}
	s.log.Debug("watching store directory", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.watchDone:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleFsEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("store watcher error", "error", err)
		}
	}
}

// StopWatch unblocks a running Watch call.
func (s *Store) StopWatch() {
	s.watchOnce.Do(func() { close(s.watchDone) })
}

func (s *Store) handleFsEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".json") {
		return
	}
	if s.isSelfWrite(event.Name) {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		s.reloadFile(event.Name)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Renames fire for our own atomic writes too; only treat the
		// event as a removal if the file is really gone.
		if _, err := os.Stat(event.Name); err == nil {
			s.reloadFile(event.Name)
			return
		}
		s.dropFile(event.Name)
	}
}

// reloadFile re-reads one workflow file after an external change.
func (s *Store) reloadFile(path string) {
	wf, err := readWorkflowFile(path)
	if err != nil {
		s.log.Warn("ignoring unreadable workflow file", "path", path, "error", err)
		return
	}

	s.mu.Lock()
	s.cache[wf.ID] = wf
	s.mu.Unlock()

	s.log.Info("workflow reloaded from disk", "workflow_id", wf.ID)
	if s.bus != nil {
		s.bus.Publish(events.NewWorkflowSavedEvent(wf.ID, wf.Name, len(wf.Steps)))
	}
}

// dropFile removes the cache entry backing a deleted file.
func (s *Store) dropFile(path string) {
	id := strings.TrimSuffix(filepath.Base(path), ".json")

	s.mu.Lock()
	_, ok := s.cache[id]
	if ok {
		delete(s.cache, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	s.log.Info("workflow removed from disk", "workflow_id", id)
	if s.bus != nil {
		s.bus.Publish(events.NewWorkflowDeletedEvent(id))
	}
}
