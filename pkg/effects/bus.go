// Package effects fans out Effects to in-process subscribers.
//
// Emit never blocks the kernel: each subscriber owns a buffered channel and a
// slow subscriber loses effects instead of stalling command handling.
package effects

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
)

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 64

// Bus implements ports.EffectSink.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]chan domain.Effect
	nextID uint64

	buffer  int
	dropped atomic.Uint64
	logger  *slog.Logger
}

// Option configures the Bus.
type Option func(*Bus)

// WithBuffer sets the per-subscriber channel size.
func WithBuffer(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger configures a logger for dropped effects.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[uint64]chan domain.Effect),
		buffer: DefaultBuffer,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit delivers e to every subscriber without blocking.
func (b *Bus) Emit(e domain.Effect) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			// Drop effect if channel is full (slow subscriber)
			b.dropped.Add(1)
			b.logger.Warn("effect bus: subscriber buffer full, dropping effect", "subscriber", id, "kind", e.Kind)
		}
	}
}

// Stream returns a channel receiving every emitted effect and a function that
// closes it. The channel is closed exactly once, by the returned function.
func (b *Bus) Stream() (<-chan domain.Effect, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan domain.Effect, b.buffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Subscribe calls fn for every emitted effect on a dedicated goroutine, in emit order.
func (b *Bus) Subscribe(fn func(domain.Effect)) (unsubscribe func()) {
	ch, cancel := b.Stream()
	go func() {
		for e := range ch {
			fn(e)
		}
	}()
	return cancel
}

// Subscribers returns the number of active subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Dropped returns how many deliveries were dropped because a buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}
