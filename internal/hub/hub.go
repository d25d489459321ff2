package hub

import (
	"context"
	"sync"

	"github.com/atikulmunna/logreader/internal/logger"
	"github.com/atikulmunna/logreader/internal/model"
)

const subscriberBuffer = 256

// Hub receives analysis events and broadcasts them to all subscribers.
type Hub struct {
	input       <-chan model.Event
	mu          sync.RWMutex
	subscribers []chan model.Event
	dropped     int64
	closed      bool
}

// New creates a Hub that reads events from the input channel.
func New(input <-chan model.Event) *Hub {
	return &Hub{input: input}
}

// Subscribe returns a buffered channel that will receive events.
// Each subscriber gets a copy of every event. After the hub stops, new
// subscriptions return an already closed channel.
func (h *Hub) Subscribe() <-chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			close(ch)
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Dropped returns the total number of events dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start reads from the input channel and broadcasts until the context is
// cancelled or the input channel is closed.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.input:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

// broadcast sends an event to all subscribers. A full subscriber misses
// the event rather than stalling the others.
func (h *Hub) broadcast(ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
			logger.Warn("hub: dropped event for slow consumer", "log_id", ev.LogID, "dropped_total", h.dropped)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
	h.closed = true
}
