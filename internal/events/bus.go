// Package events provides the pub/sub bus that carries workflow and run
// lifecycle notifications to API streams and other listeners.
package events

import (
	"sync"
	"sync/atomic"
	"time"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	Timestamp() time.Time
	WorkflowID() string
	RunID() string
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type     string    `json:"type"`
	Time     time.Time `json:"timestamp"`
	Workflow string    `json:"workflow_id"`
	Run      string    `json:"run_id,omitempty"`
}

func (e BaseEvent) EventType() string    { return e.Type }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) WorkflowID() string   { return e.Workflow }
func (e BaseEvent) RunID() string        { return e.Run }

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType, workflowID, runID string) BaseEvent {
	return BaseEvent{
		Type:     eventType,
		Time:     time.Now(),
		Workflow: workflowID,
		Run:      runID,
	}
}

// Subscriber represents an event subscription.
type Subscriber struct {
	ch    chan Event
	types map[string]bool // Empty means all types
	run   string          // Empty means all runs
}

func (s *Subscriber) matches(event Event) bool {
	if len(s.types) > 0 && !s.types[event.EventType()] {
		return false
	}
	if s.run != "" && s.run != event.RunID() {
		return false
	}
	return true
}

// EventBus provides pub/sub with backpressure control.
type EventBus struct {
	mu           sync.RWMutex
	subscribers  []*Subscriber
	bufferSize   int
	droppedCount int64
	closed       bool
}

// New creates a new EventBus with the specified buffer size.
func New(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		subscribers: make([]*Subscriber, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription for specific event types.
// If no types are specified, subscribes to all events.
// Returns a channel that receives events.
func (eb *EventBus) Subscribe(types ...string) <-chan Event {
	return eb.subscribe("", types)
}

// SubscribeForRun creates a subscription limited to events of a single run.
// If no types are specified, subscribes to all event types for that run.
func (eb *EventBus) SubscribeForRun(runID string, types ...string) <-chan Event {
	return eb.subscribe(runID, types)
}

func (eb *EventBus) subscribe(runID string, types []string) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	sub := &Subscriber{
		ch:    make(chan Event, eb.bufferSize),
		types: make(map[string]bool),
		run:   runID,
	}
	for _, t := range types {
		sub.types[t] = true
	}
	eb.subscribers = append(eb.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a subscription and closes its channel.
func (eb *EventBus) Unsubscribe(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	result := make([]*Subscriber, 0, len(eb.subscribers))
	for _, sub := range eb.subscribers {
		if sub.ch != ch {
			result = append(result, sub)
		} else {
			close(sub.ch)
		}
	}
	eb.subscribers = result
}

// Publish sends an event to all matching subscribers.
// Subscribers may drop events if their buffer is full (ring buffer behavior).
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, sub := range eb.subscribers {
		if !sub.matches(event) {
			continue
		}
		select {
		case sub.ch <- event:
			// Sent successfully
		default:
			// Buffer full, drop oldest and try again (ring buffer)
			select {
			case <-sub.ch: // Drop oldest
				atomic.AddInt64(&eb.droppedCount, 1)
			default:
			}
			select {
			case sub.ch <- event:
			default:
				atomic.AddInt64(&eb.droppedCount, 1)
			}
		}
	}
}

// DroppedCount returns the total number of dropped events.
func (eb *EventBus) DroppedCount() int64 {
	return atomic.LoadInt64(&eb.droppedCount)
}

// Close closes the event bus and all subscriber channels.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	for _, sub := range eb.subscribers {
		close(sub.ch)
	}
	eb.subscribers = nil
}
