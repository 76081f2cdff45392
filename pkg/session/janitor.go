package session

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
)

// Sweep evicts every expired session and returns how many were removed.
// A store error on one session is logged and does not stop the sweep.
func (r *Registry) Sweep(ctx context.Context) (int, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	ids, err := r.store.List(ctx)
	if err != nil {
		return 0, err
	}

	evicted := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return evicted, ctx.Err()
		}
		err := r.WithLock(ctx, id, func(ctx context.Context) error {
			sc, err := r.store.Load(ctx, id)
			if err != nil {
				return err
			}
			if !r.expired(sc) {
				return nil
			}
			if err := r.Evict(ctx, id, ReasonExpired); err != nil {
				return err
			}
			evicted++
			return nil
		})
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			r.logger.Warn("sweep failed for session", "session_id", id, "err", err)
		}
	}
	if evicted > 0 {
		r.logger.Debug("sweep finished", "evicted", evicted, "scanned", len(ids))
	}
	return evicted, nil
}

// Janitor runs Sweep every interval until ctx is cancelled.
func (r *Registry) Janitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("session sweep failed", "err", err)
			}
		}
	}
}
