package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baton-ai/baton/internal/events"
)

// sseHeartbeatInterval paces the comment frames that keep idle streams
// alive through proxies.
const sseHeartbeatInterval = 30 * time.Second

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
}

// handleRunEvents streams one run's progress. The client first receives
// a snapshot event with the run's current state, then lifecycle events as
// they happen. The stream closes itself after the terminal event.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if s.deps.Bus == nil {
		respondError(w, http.StatusServiceUnavailable, "event bus not available")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Subscribe before snapshotting so a transition between the two is
	// either visible in the snapshot or delivered on the channel.
	ch := s.deps.Bus.SubscribeForRun(runID,
		events.TypeRunStarted, events.TypeRunAdvanced, events.TypeRunCompleted)
	defer s.deps.Bus.Unsubscribe(ch)

	run, err := s.deps.Runner.Get(runID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	sseHeaders(w)
	s.logger.Debug("run stream connected", "run_id", runID, "remote_addr", r.RemoteAddr)

	s.sendSSEEvent(w, flusher, "snapshot", run)
	if run.IsTerminal() {
		return
	}

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("run stream disconnected", "run_id", runID)
			return
		case <-heartbeat.C:
			s.sendSSEComment(w, flusher, "heartbeat")
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.sendSSEEvent(w, flusher, event.EventType(), event)
			if event.EventType() == events.TypeRunCompleted {
				return
			}
		}
	}
}

// handleEventStream is the firehose: every workflow and run event on the
// bus, streamed until the client disconnects.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		respondError(w, http.StatusServiceUnavailable, "event bus not available")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	ch := s.deps.Bus.Subscribe()
	defer s.deps.Bus.Unsubscribe(ch)

	sseHeaders(w)
	s.logger.Debug("event stream connected", "remote_addr", r.RemoteAddr)

	s.sendSSEEvent(w, flusher, "connected", map[string]string{"status": "connected"})

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("event stream disconnected", "remote_addr", r.RemoteAddr)
			return
		case <-heartbeat.C:
			s.sendSSEComment(w, flusher, "heartbeat")
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.sendSSEEvent(w, flusher, event.EventType(), event)
		}
	}
}

// sendSSEEvent writes one event to the stream in SSE wire format.
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		s.logger.Error("failed to marshal SSE data", "error", err)
		return
	}

	// SSE format: event: type\ndata: json\n\n
	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()
}

// sendSSEComment writes a comment frame, which clients ignore.
func (s *Server) sendSSEComment(w http.ResponseWriter, flusher http.Flusher, comment string) {
	fmt.Fprintf(w, ": %s\n\n", comment)
	flusher.Flush()
}
