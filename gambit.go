package gambit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/appliers"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/effects"
	"github.com/aretw0/gambit/pkg/handler"
	"github.com/aretw0/gambit/pkg/observability"
	"github.com/aretw0/gambit/pkg/orchestrator"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/query"
	"github.com/aretw0/gambit/pkg/registry"
	"github.com/aretw0/gambit/pkg/session"
)

// Kernel is the high-level entry point of the library.
// It wires the orchestrator, the command catalog, the session registry and
// the handler, and exposes them as a ports.CommandProcessor.
type Kernel struct {
	orch     *orchestrator.Orchestrator
	handler  *handler.Handler
	catalog  *registry.Catalog
	sessions *session.Registry
	bus      *effects.Bus

	repo    ports.StateRepository
	store   ports.SessionStore
	locker  ports.DistributedLocker
	metrics *observability.Metrics

	rules    actions.Rules
	appliers []orchestrator.Registration
	initial  domain.State
	ttl      time.Duration
	lockTTL  time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.CommandProcessor = (*Kernel)(nil)

// Option defines a functional option for configuring the Kernel.
type Option func(*Kernel)

// WithRules replaces the reference rule tunables used to build the default catalog.
func WithRules(r actions.Rules) Option {
	return func(k *Kernel) {
		k.rules = r
	}
}

// WithCatalog replaces the reference catalog entirely.
func WithCatalog(c *registry.Catalog) Option {
	return func(k *Kernel) {
		k.catalog = c
	}
}

// WithAppliers registers appliers for custom Decision kinds next to the built-in ones.
func WithAppliers(regs ...orchestrator.Registration) Option {
	return func(k *Kernel) {
		k.appliers = append(k.appliers, regs...)
	}
}

// WithInitialState sets the State used when the repository has none.
func WithInitialState(s domain.State) Option {
	return func(k *Kernel) {
		k.initial = s
	}
}

// WithRepository sets the StateRepository (default: in memory).
func WithRepository(repo ports.StateRepository) Option {
	return func(k *Kernel) {
		k.repo = repo
	}
}

// WithSessionStore sets the SessionStore (default: in memory).
func WithSessionStore(store ports.SessionStore) Option {
	return func(k *Kernel) {
		k.store = store
	}
}

// WithLocker serializes session access across processes.
func WithLocker(l ports.DistributedLocker) Option {
	return func(k *Kernel) {
		k.locker = l
	}
}

// WithLockTTL bounds how long a distributed session lock is held.
func WithLockTTL(ttl time.Duration) Option {
	return func(k *Kernel) {
		k.lockTTL = ttl
	}
}

// WithSessionTTL evicts sessions idle for longer than ttl. Zero disables expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(k *Kernel) {
		k.ttl = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(k *Kernel) {
		k.hooks = hooks
	}
}

// WithMetrics records Prometheus metrics through lifecycle hooks.
func WithMetrics(m *observability.Metrics) Option {
	return func(k *Kernel) {
		k.metrics = m
	}
}

// WithLogger sets a custom structured logger for the kernel.
func WithLogger(logger *slog.Logger) Option {
	return func(k *Kernel) {
		k.logger = logger
	}
}

// WithClock overrides time.Now everywhere in the kernel.
func WithClock(now func() time.Time) Option {
	return func(k *Kernel) {
		k.now = now
	}
}

// New initializes a Kernel. The authoritative State is loaded from the
// repository; when the repository is empty the initial State is used.
func New(ctx context.Context, opts ...Option) (*Kernel, error) {
	k := &Kernel{
		rules:   actions.DefaultRules(),
		initial: domain.NewState(actions.PhaseMain),
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.repo == nil {
		k.repo = memory.NewRepository()
	}
	if k.store == nil {
		k.store = memory.NewStore()
	}
	if k.catalog == nil {
		c, err := actions.Catalog(k.rules)
		if err != nil {
			return nil, fmt.Errorf("build catalog: %w", err)
		}
		k.catalog = c
	}

	reg, err := orchestrator.NewRegistry(append(appliers.Defaults(), k.appliers...)...)
	if err != nil {
		return nil, fmt.Errorf("register appliers: %w", err)
	}

	initial, err := k.repo.LoadState(ctx)
	switch {
	case errors.Is(err, domain.ErrStateNotFound):
		initial = k.initial
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}

	hooks := []domain.LifecycleHooks{observability.LogHooks(k.logger)}
	if k.metrics != nil {
		hooks = append(hooks, k.metrics.Hooks())
	}
	hooks = append(hooks, k.hooks)
	combined := domain.ComposeHooks(hooks...)

	k.orch = orchestrator.New(reg, initial,
		orchestrator.WithLogger(k.logger),
		orchestrator.WithHooks(combined),
		orchestrator.WithClock(k.now),
	)

	sessionOpts := []session.Option{
		session.WithTTL(k.ttl),
		session.WithClock(k.now),
		session.WithHooks(combined),
		session.WithLogger(k.logger),
	}
	if k.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(k.locker))
	}
	if k.lockTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithLockTTL(k.lockTTL))
	}
	k.sessions = session.NewRegistry(k.store, sessionOpts...)

	k.bus = effects.NewBus(effects.WithLogger(k.logger))

	k.handler = handler.New(k.orch, k.catalog, k.sessions,
		handler.WithRepository(k.repo),
		handler.WithEffectSink(k.bus),
		handler.WithHooks(combined),
		handler.WithLogger(k.logger),
		handler.WithClock(k.now),
	)

	k.logger.Debug("kernel ready", "version", initial.Version, "phase", initial.PhaseID, "commands", len(k.catalog.Types()))
	return k, nil
}

// Handle resolves a new Command.
func (k *Kernel) Handle(ctx context.Context, cmd domain.Command) (domain.CommandResult, error) {
	return k.handler.Handle(ctx, cmd)
}

// Resume continues a suspended session.
func (k *Kernel) Resume(ctx context.Context, resp domain.InteractionResponse) (domain.CommandResult, error) {
	return k.handler.Resume(ctx, resp)
}

// State returns the authoritative State.
func (k *Kernel) State() domain.State {
	return k.orch.State()
}

// Query returns a read-only view over the current State.
func (k *Kernel) Query() query.Service {
	return query.New(k.orch.State())
}

// Setup commits decisions outside any command, e.g. to build the board and
// spawn the initial entities, and persists the result.
func (k *Kernel) Setup(ctx context.Context, decisions ...domain.Decision) ([]domain.Effect, error) {
	out, err := k.orch.Commit(ctx, decisions)
	if err != nil {
		return nil, err
	}
	if err := k.repo.SaveState(ctx, k.orch.State()); err != nil {
		return out, fmt.Errorf("save state: %w", err)
	}
	for _, e := range out {
		k.bus.Emit(e)
	}
	return out, nil
}

// AdvancePhase ends the current phase and starts next, firing the scheduled
// decisions of both boundaries.
func (k *Kernel) AdvancePhase(ctx context.Context, next string) ([]domain.Effect, error) {
	out, err := k.orch.AdvancePhase(ctx, next)
	if err != nil {
		return nil, err
	}
	if err := k.repo.SaveState(ctx, k.orch.State()); err != nil {
		return out, fmt.Errorf("save state: %w", err)
	}
	for _, e := range out {
		k.bus.Emit(e)
	}
	return out, nil
}

// Sessions returns the session registry.
func (k *Kernel) Sessions() *session.Registry { return k.sessions }

// Effects returns the effect bus.
func (k *Kernel) Effects() *effects.Bus { return k.bus }

// Catalog returns the command catalog.
func (k *Kernel) Catalog() *registry.Catalog { return k.catalog }

// Metrics returns the metrics, or nil when none were configured.
func (k *Kernel) Metrics() *observability.Metrics { return k.metrics }
