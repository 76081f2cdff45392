package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newContext(id string, now time.Time) *domain.SessionContext {
	cmd := domain.Command{ID: "c-" + id, Type: "attack", ActorID: "hero", TargetID: "goblin"}
	sc := domain.NewSessionContext(id, cmd, domain.NewState("main"), now)
	sc.CurrentNodeID = "resolve_hit"
	return sc
}

func TestRegistry_RegisterGetRemove(t *testing.T) {
	ctx := context.Background()
	reg := session.NewRegistry(memory.NewStore())

	require.NoError(t, reg.Register(ctx, newContext("s-1", time.Now())))

	sc, err := reg.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "resolve_hit", sc.CurrentNodeID)

	ids, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1"}, ids)

	require.NoError(t, reg.Remove(ctx, "s-1"))
	_, err = reg.Get(ctx, "s-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRegistry_RegisterRequiresID(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	assert.Error(t, reg.Register(context.Background(), &domain.SessionContext{}))
	assert.Error(t, reg.Register(context.Background(), nil))
}

func TestRegistry_ExpiredSessionsAreEvicted(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}

	var evicted []domain.SessionEvent
	hooks := domain.LifecycleHooks{
		OnSessionEvicted: func(_ context.Context, e *domain.SessionEvent) { evicted = append(evicted, *e) },
	}
	reg := session.NewRegistry(memory.NewStore(),
		session.WithTTL(time.Minute),
		session.WithClock(clk.Now),
		session.WithHooks(hooks),
	)

	require.NoError(t, reg.Register(ctx, newContext("old", clk.Now())))
	clk.Advance(45 * time.Second)
	require.NoError(t, reg.Register(ctx, newContext("young", clk.Now())))
	clk.Advance(30 * time.Second)

	_, err := reg.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	require.Len(t, evicted, 1)
	assert.Equal(t, "old", evicted[0].SessionID)
	assert.Equal(t, session.ReasonExpired, evicted[0].Reason)

	_, err = reg.Get(ctx, "young")
	assert.NoError(t, err)
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
	reg := session.NewRegistry(memory.NewStore(), session.WithTTL(time.Minute), session.WithClock(clk.Now))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, reg.Register(ctx, newContext(id, clk.Now())))
	}
	clk.Advance(30 * time.Second)
	require.NoError(t, reg.Register(ctx, newContext("d", clk.Now())))
	clk.Advance(31 * time.Second)

	n, err := reg.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ids, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ids)
}

func TestRegistry_SweepDisabledWithoutTTL(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Now()}
	reg := session.NewRegistry(memory.NewStore(), session.WithTTL(0), session.WithClock(clk.Now))
	require.NoError(t, reg.Register(ctx, newContext("a", clk.Now())))
	clk.Advance(24 * time.Hour)

	n, err := reg.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = reg.Get(ctx, "a")
	assert.NoError(t, err)
}

func TestRegistry_JanitorStopsOnCancel(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore(), session.WithTTL(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, reg.Register(ctx, newContext("a", time.Now().Add(-time.Hour))))

	done := make(chan struct{})
	go func() {
		reg.Janitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		ids, _ := reg.List(context.Background())
		return len(ids) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRegistry_WithLockSerializes(t *testing.T) {
	reg := session.NewRegistry(memory.NewStore())
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		active  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reg.WithLock(ctx, "same", func(context.Context) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()
				time.Sleep(2 * time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	ttl    time.Duration
	freed  int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.freed++
		return nil
	}, nil
}

func TestRegistry_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	reg := session.NewRegistry(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	err := reg.WithLock(context.Background(), "s-9", func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"s-9"}, locker.locked)
	assert.Equal(t, 5*time.Second, locker.ttl)
	assert.Equal(t, 1, locker.freed)
}
