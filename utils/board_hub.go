package utils

import (
	"sync"

	"gearguard/models"
)

const boardBufferSize = 16

// BoardHub fans lifecycle events out to Kanban board subscribers.
// Slow subscribers drop events rather than block publishers.
type BoardHub struct {
	mu          sync.RWMutex
	subscribers map[chan models.BoardEvent]struct{}
}

func NewBoardHub() *BoardHub {
	return &BoardHub{subscribers: make(map[chan models.BoardEvent]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener is gone; it closes the channel.
func (h *BoardHub) Subscribe() (<-chan models.BoardEvent, func()) {
	ch := make(chan models.BoardEvent, boardBufferSize)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *BoardHub) Publish(event models.BoardEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			Logger("board").WithField("request_id", event.RequestID).Warn("dropping board event for slow subscriber")
		}
	}
}

// Subscribers returns the number of active listeners.
func (h *BoardHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
