package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	StudentID int64
	Event     string
	Data      interface{}
}

// Hub fans invite events out to the subscribers watching one student
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a student and returns the event channel and cleanup function
func (h *Hub) Subscribe(studentID int64) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[studentID] == nil {
		h.subscribers[studentID] = make(map[chan Event]struct{})
	}
	h.subscribers[studentID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[studentID], ch)
			close(ch)
			if len(h.subscribers[studentID]) == 0 {
				delete(h.subscribers, studentID)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a student. Full channels drop the event.
func (h *Hub) Publish(studentID int64, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[studentID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a student
func (h *Hub) SubscriberCount(studentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[studentID])
}

// TotalSubscribers returns the total number of active subscribers across all students
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
