package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

const (
	// DefaultTTL is how long a suspended session waits for its response.
	DefaultTTL = 15 * time.Minute
	// DefaultSweepInterval is how often the janitor looks for expired sessions.
	DefaultSweepInterval = time.Minute
	// DefaultLockTTL bounds how long a distributed lock is held.
	DefaultLockTTL = 30 * time.Second
)

// Eviction reasons reported through OnSessionEvicted.
const (
	ReasonExpired   = "expired"
	ReasonCancelled = "cancelled"
	ReasonRemoved   = "removed"
	ReasonRejected  = "rejected"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Registry tracks suspended sessions, ensuring safe concurrent resumes.
// It uses Reference Counting to garbage collect unused locks.
type Registry struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration

	ttl    time.Duration
	now    func() time.Time
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Registry) {
		r.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.lockTTL = ttl
	}
}

// WithTTL sets how long a session may stay suspended. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithHooks sets the lifecycle hooks used to report evictions.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store ports.SessionStore, opts ...Option) *Registry {
	r := &Registry{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (r *Registry) acquire(sessionID string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		r.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (r *Registry) release(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, sessionID)
	}
}

// Register stores a suspended session.
// Register, Get and Remove do not take the session lock; callers doing a
// read-modify-write wrap the sequence in WithLock.
func (r *Registry) Register(ctx context.Context, sc *domain.SessionContext) error {
	if sc == nil || sc.SessionID == "" {
		return errors.New("session id is required")
	}
	sc.UpdatedAt = r.now()
	if err := r.store.Save(ctx, sc); err != nil {
		return fmt.Errorf("failed to register session %s: %w", sc.SessionID, err)
	}
	r.logger.Debug("session registered", "session_id", sc.SessionID, "node", sc.CurrentNodeID)
	return nil
}

// Get returns a suspended session. Expired sessions are evicted and reported as not found.
func (r *Registry) Get(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	sc, err := r.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if r.expired(sc) {
		if err := r.Evict(ctx, sessionID, ReasonExpired); err != nil {
			r.logger.Warn("failed to evict expired session", "session_id", sessionID, "err", err)
		}
		return nil, fmt.Errorf("%w: session %s expired", domain.ErrSessionNotFound, sessionID)
	}
	return sc, nil
}

// Remove forgets a session after it reached a terminal outcome.
func (r *Registry) Remove(ctx context.Context, sessionID string) error {
	return r.store.Delete(ctx, sessionID)
}

// Evict removes a session that will never complete and reports why.
func (r *Registry) Evict(ctx context.Context, sessionID, reason string) error {
	if err := r.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	r.logger.Info("session evicted", "session_id", sessionID, "reason", reason)
	if r.hooks.OnSessionEvicted != nil {
		r.hooks.OnSessionEvicted(ctx, &domain.SessionEvent{
			EventBase: domain.EventBase{Timestamp: r.now(), Type: domain.EventSessionEvicted},
			SessionID: sessionID,
			Reason:    reason,
		})
	}
	return nil
}

// List delegates to the store.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Store returns the underlying session store.
func (r *Registry) Store() ports.SessionStore {
	return r.store
}

// TTL returns the configured session TTL.
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

func (r *Registry) expired(sc *domain.SessionContext) bool {
	if r.ttl <= 0 {
		return false
	}
	last := sc.UpdatedAt
	if last.IsZero() {
		last = sc.CreatedAt
	}
	return !last.IsZero() && r.now().Sub(last) > r.ttl
}

// WithLock executes a function while holding the lock for the session.
func (r *Registry) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := r.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(sessionID)
	}()

	// Distributed Locking
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, sessionID, r.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				r.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
