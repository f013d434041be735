package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHandoffReason is recorded when the caller gives none.
const DefaultHandoffReason = "User requested"

// handoffCapacity bounds the in-memory handoff log.
const handoffCapacity = 50

// AgentHandoff records a transfer of responsibility between named agents.
type AgentHandoff struct {
	ID        string                 `json:"id"`
	FromAgent string                 `json:"from_agent"`
	ToAgent   string                 `json:"to_agent"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Reason    string                 `json:"reason"`
	Timestamp time.Time              `json:"timestamp"`
}

// HandoffLog is an append-only, process-wide log of agent handoffs capped at
// the last 50 entries. Safe for concurrent use.
type HandoffLog struct {
	mu      sync.Mutex
	entries []AgentHandoff
}

// NewHandoffLog creates an empty handoff log.
func NewHandoffLog() *HandoffLog {
	return &HandoffLog{entries: make([]AgentHandoff, 0, handoffCapacity)}
}

// Record appends a handoff, trimming the log to capacity.
func (l *HandoffLog) Record(from, to string, context map[string]interface{}, reason string) AgentHandoff {
	if reason == "" {
		reason = DefaultHandoffReason
	}
	h := AgentHandoff{
		ID:        uuid.NewString(),
		FromAgent: from,
		ToAgent:   to,
		Context:   context,
		Reason:    reason,
		Timestamp: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, h)
	if len(l.entries) > handoffCapacity {
		l.entries = append([]AgentHandoff(nil), l.entries[len(l.entries)-handoffCapacity:]...)
	}
	return h
}

// Recent returns the last limit handoffs, oldest first. A non-positive
// limit defaults to 10.
func (l *HandoffLog) Recent(limit int) []AgentHandoff {
	if limit <= 0 {
		limit = 10
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	start := 0
	if len(l.entries) > limit {
		start = len(l.entries) - limit
	}
	return append([]AgentHandoff(nil), l.entries[start:]...)
}

// Len returns the number of retained handoffs.
func (l *HandoffLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
