package http

import (
	"log/slog"
	"sync"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager fans messages out to SSE connections.
// Slow clients lose messages instead of blocking the broadcaster.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	buffer      int
	logger      *slog.Logger
}

// NewStreamManager creates a manager with a per-connection buffer.
func NewStreamManager(buffer int, logger *slog.Logger) *StreamManager {
	if buffer <= 0 {
		buffer = 16
	}
	return &StreamManager{
		subscribers: make(map[chan Message]struct{}),
		buffer:      buffer,
		logger:      logger,
	}
}

// Subscribe registers a connection. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, sm.buffer)
	sm.mu.Lock()
	sm.subscribers[ch] = struct{}{}
	sm.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.subscribers, ch)
			close(ch)
		})
	}
}

// Broadcast sends msg to every connection.
func (sm *StreamManager) Broadcast(msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE client buffer full, dropping message", "event", msg.Event)
		}
	}
}

// Len returns the number of connections.
func (sm *StreamManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers)
}
