package ports

import "github.com/aretw0/gambit/pkg/domain"

// EffectSink publishes Effects to observers.
// Emit must never block the caller on slow subscribers.
type EffectSink interface {
	Emit(effect domain.Effect)
	Subscribe(handler func(domain.Effect)) (unsubscribe func())
}
