// Package events implements the progress event bus: a thread-safe bounded
// queue that workflows and tools emit hierarchical progress events onto, and
// that a single renderer drains.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvlabs/deepwatch/agent"
)

// EventType identifies the kind of progress event.
type EventType string

const (
	WorkflowStart    EventType = "WORKFLOW_START"
	WorkflowComplete EventType = "WORKFLOW_COMPLETE"
	StepStart        EventType = "STEP_START"
	StepComplete     EventType = "STEP_COMPLETE"
	StepError        EventType = "STEP_ERROR"
	ToolStart        EventType = "TOOL_START"
	ToolComplete     EventType = "TOOL_COMPLETE"
	ToolError        EventType = "TOOL_ERROR"
	MessageEvent     EventType = "MESSAGE"
)

// Event is one node in the progress tree rooted at a workflow.
type Event struct {
	Type      EventType
	Message   string
	NodeID    string
	ParentID  string
	Metadata  map[string]interface{}
	Timestamp time.Time
}

// NewEvent builds an Event with a fresh node id.
func NewEvent(typ EventType, message, parentID string) Event {
	return Event{
		Type:      typ,
		Message:   message,
		NodeID:    uuid.NewString(),
		ParentID:  parentID,
		Metadata:  map[string]interface{}{},
		Timestamp: time.Now(),
	}
}

// Bus is a multi-producer/single-consumer bounded FIFO. On overflow the
// oldest event is dropped to make room for the newest.
type Bus struct {
	mu     sync.Mutex
	cap    int
	queue  []Event
	closed bool
	logger agent.Logger
}

// NewBus creates a bus with the given capacity. A capacity <= 0 defaults to
// 1000.
func NewBus(capacity int, logger agent.Logger) *Bus {
	if capacity <= 0 {
		capacity = 1000
	}
	if logger == nil {
		logger = &agent.NoopLogger{}
	}
	return &Bus{cap: capacity, logger: logger}
}

// Emit pushes an event onto the queue. Producers must not call Emit after
// Close; doing so is logged at Warn and ignored rather than panicking,
// since a multi-producer system cannot guarantee every producer observes
// Close before its next Emit.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		b.logger.Warn(nil, "event emitted after bus close", agent.F("event_type", string(e.Type)))
		return
	}

	if len(b.queue) >= b.cap {
		b.queue = b.queue[1:]
	}
	b.queue = append(b.queue, e)
}

// Drain removes and returns up to max queued events, oldest first. A max
// <= 0 drains everything currently queued.
func (b *Bus) Drain(max int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if max <= 0 || max > len(b.queue) {
		max = len(b.queue)
	}
	out := make([]Event, max)
	copy(out, b.queue[:max])
	b.queue = b.queue[max:]
	return out
}

// Close signals that no further events should be emitted.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Len reports the number of queued, undrained events.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Node is one node of the reconstructed progress tree.
type Node struct {
	Event    Event
	Children []*Node
}

// BuildTree reconstructs the parent-pointer event list into a forest of
// trees (normally a single tree rooted at the workflow's WORKFLOW_START
// event). A visited set guards against cycles in malformed input.
func BuildTree(evs []Event) []*Node {
	nodes := make(map[string]*Node, len(evs))
	for _, e := range evs {
		nodes[e.NodeID] = &Node{Event: e}
	}

	var roots []*Node
	visited := make(map[string]bool, len(evs))

	for _, e := range evs {
		if visited[e.NodeID] {
			continue
		}
		visited[e.NodeID] = true

		n := nodes[e.NodeID]
		parent, ok := nodes[e.ParentID]
		if e.ParentID == "" || !ok || parent == n {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	return roots
}
