package httpapi

import (
	"sync"

	"github.com/twiced-technology-gmbh/lumina/internal/scheduler"
)

const clientQueueSize = 16

// AlertHub fans deadline alerts out to connected websocket clients. It is the
// engine's in-app AlertSink when serving.
type AlertHub struct {
	mu      sync.Mutex
	clients map[chan scheduler.Notification]struct{}
	dropped int

	onChange func(clients int)
}

// NewAlertHub returns an empty hub. onChange, if set, is called with the
// client count whenever a client joins or leaves.
func NewAlertHub(onChange func(clients int)) *AlertHub {
	return &AlertHub{
		clients:  make(map[chan scheduler.Notification]struct{}),
		onChange: onChange,
	}
}

// Alert implements scheduler.AlertSink. Clients whose queue is full miss the alert.
func (h *AlertHub) Alert(n scheduler.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- n:
		default:
			h.dropped++
		}
	}
}

// Subscribe registers a client queue. The returned func unregisters it.
func (h *AlertHub) Subscribe() (<-chan scheduler.Notification, func()) {
	ch := make(chan scheduler.Notification, clientQueueSize)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.changed(n)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, ch)
			n := len(h.clients)
			h.mu.Unlock()
			h.changed(n)
		})
	}
}

// Clients returns the number of connected clients.
func (h *AlertHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many deliveries were skipped because a client lagged.
func (h *AlertHub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *AlertHub) changed(n int) {
	if h.onChange != nil {
		h.onChange(n)
	}
}
