package sse

import (
	"sync"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
)

const subscriberBuffer = 16

// Publisher delivers an event to an owner's subscribers, locally or across instances
type Publisher interface {
	Publish(ownerID string, event notification.Event)
}

// Hub fans notification events out to the live subscribers of each owner
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan notification.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan notification.Event]struct{}),
	}
}

// Subscribe registers a new subscriber for an owner and returns the event channel and cleanup function.
// The cleanup function is safe to call more than once.
func (h *Hub) Subscribe(ownerID string) (<-chan notification.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan notification.Event, subscriberBuffer)

	if h.subscribers[ownerID] == nil {
		h.subscribers[ownerID] = make(map[chan notification.Event]struct{})
	}
	h.subscribers[ownerID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[ownerID], ch)
			close(ch)
			if len(h.subscribers[ownerID]) == 0 {
				delete(h.subscribers, ownerID)
			}
		})
	}

	return ch, cleanup
}

// Publish never blocks; a subscriber with a full buffer misses the event
func (h *Hub) Publish(ownerID string, event notification.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[ownerID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[ownerID])
}

func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
