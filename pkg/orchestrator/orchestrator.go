package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
)

// Orchestrator owns the authoritative State and the Applier registry.
type Orchestrator struct {
	mu       sync.Mutex
	registry *Registry
	state    domain.State

	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithHooks sets the lifecycle hooks reported after each applied decision.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithClock overrides the clock used to stamp effects.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator starting from the given State.
func New(registry *Registry, initial domain.State, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		state:    initial,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current snapshot. The value is immutable and safe to share.
func (o *Orchestrator) State() domain.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Restore replaces the authoritative State with one loaded from storage.
func (o *Orchestrator) Restore(s domain.State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = s
}

// Apply applies one decision immediately, regardless of its timing.
func (o *Orchestrator) Apply(ctx context.Context, d domain.Decision) ([]domain.Effect, error) {
	return o.transact(ctx, func(tx *txn) error {
		return tx.apply(d)
	})
}

// Enqueue appends decisions to the pending queue without applying them.
func (o *Orchestrator) Enqueue(decisions ...domain.Decision) {
	if len(decisions) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = o.state.WithPending(o.state.Pending.Add(decisions...))
	o.logger.Debug("decisions enqueued", "count", len(decisions), "pending", o.state.Pending.Len())
}

// ExecuteScheduled applies every pending decision matching (phase, when) in enqueue order.
// Single entries are removed right after they are applied; Permanent entries stay queued.
func (o *Orchestrator) ExecuteScheduled(ctx context.Context, phase string, when domain.Trigger) ([]domain.Effect, error) {
	return o.transact(ctx, func(tx *txn) error {
		return tx.executeScheduled(phase, when)
	})
}

// Commit applies immediate decisions now and enqueues the timed ones, in one transaction.
func (o *Orchestrator) Commit(ctx context.Context, decisions []domain.Decision) ([]domain.Effect, error) {
	return o.transact(ctx, func(tx *txn) error {
		var later []domain.Decision
		for _, d := range decisions {
			if d.Timing().IsImmediate() {
				if err := tx.apply(d); err != nil {
					return err
				}
				continue
			}
			later = append(later, d)
		}
		tx.state = tx.state.WithPending(tx.state.Pending.Add(later...))
		return nil
	})
}

// CommitCommand concludes a command in one transaction: immediate decisions are
// applied and timed ones enqueued, then the triggers the batch reaches fire.
// A SetPhase in the batch fires the outgoing phase's OnStateEnd before it is
// applied and the final phase's OnStateStart after the batch, so decisions
// scheduled by the same command are eligible. OnCommandExecutionEnd for the
// final phase fires last.
func (o *Orchestrator) CommitCommand(ctx context.Context, decisions []domain.Decision) ([]domain.Effect, error) {
	return o.transact(ctx, func(tx *txn) error {
		start := tx.state.PhaseID
		var later []domain.Decision
		for _, d := range decisions {
			if !d.Timing().IsImmediate() {
				later = append(later, d)
				continue
			}
			if sp, ok := d.(domain.SetPhase); ok && sp.Phase != tx.state.PhaseID {
				if err := tx.executeScheduled(tx.state.PhaseID, domain.OnStateEnd); err != nil {
					return err
				}
			}
			if err := tx.apply(d); err != nil {
				return err
			}
		}
		tx.state = tx.state.WithPending(tx.state.Pending.Add(later...))

		phase := tx.state.PhaseID
		if phase != start {
			if err := tx.executeScheduled(phase, domain.OnStateStart); err != nil {
				return err
			}
		}
		return tx.executeScheduled(phase, domain.OnCommandExecutionEnd)
	})
}

// AdvancePhase fires the current phase's end triggers, switches to next and
// fires next's start triggers.
func (o *Orchestrator) AdvancePhase(ctx context.Context, next string) ([]domain.Effect, error) {
	return o.transact(ctx, func(tx *txn) error {
		current := tx.state.PhaseID
		if err := tx.executeScheduled(current, domain.OnStateEnd); err != nil {
			return err
		}
		if err := tx.apply(domain.SetPhase{DecisionBase: domain.Now("phase:" + current), Phase: next}); err != nil {
			return err
		}
		return tx.executeScheduled(next, domain.OnStateStart)
	})
}

// transact runs fn against a working copy and publishes it when fn succeeds.
// A panic in fn (a missing applier) propagates with the lock released and the
// State untouched.
func (o *Orchestrator) transact(ctx context.Context, fn func(*txn) error) ([]domain.Effect, error) {
	tx, err := o.run(fn)
	if err != nil {
		o.logger.Error("transaction rolled back", "err", err, "version", tx.state.Version)
		return nil, err
	}
	if o.hooks.OnDecisionApplied != nil {
		for i := range tx.applied {
			o.hooks.OnDecisionApplied(ctx, &tx.applied[i])
		}
	}
	return tx.effects, nil
}

func (o *Orchestrator) run(fn func(*txn) error) (*txn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tx := &txn{o: o, state: o.state}
	if err := fn(tx); err != nil {
		return tx, err
	}
	o.state = tx.state
	return tx, nil
}

// txn accumulates the work of one transaction.
type txn struct {
	o       *Orchestrator
	state   domain.State
	effects []domain.Effect
	applied []domain.DecisionEvent
}

func (tx *txn) apply(d domain.Decision) error {
	applier, ok := tx.o.registry.Lookup(d.Kind())
	if !ok {
		panic(&UnregisteredApplierError{Kind: d.Kind()})
	}

	next, effects, err := applier(d, tx.state)
	if err != nil {
		return &ApplyError{Kind: d.Kind(), OriginID: d.Origin(), Err: err}
	}
	next.Version = tx.state.Version + 1

	now := tx.o.now()
	for i := range effects {
		if effects[i].OriginID == "" {
			effects[i].OriginID = d.Origin()
		}
		if effects[i].Timestamp.IsZero() {
			effects[i].Timestamp = now
		}
	}

	tx.state = next
	tx.effects = append(tx.effects, effects...)
	tx.applied = append(tx.applied, domain.DecisionEvent{
		EventBase: domain.EventBase{Timestamp: now, Type: domain.EventDecisionApplied},
		Kind:      d.Kind(),
		OriginID:  d.Origin(),
		Timing:    d.Timing(),
		Effects:   len(effects),
		Version:   next.Version,
	})
	tx.o.logger.Debug("decision applied", "kind", d.Kind(), "origin", d.Origin(), "version", next.Version)
	return nil
}

func (tx *txn) executeScheduled(phase string, when domain.Trigger) error {
	matches := tx.state.Pending.Query(phase, when)
	for _, entry := range matches {
		// An earlier applier in this batch may have pruned the entry.
		if !tx.state.Pending.Contains(entry.Seq) {
			continue
		}
		if err := tx.apply(entry.Decision); err != nil {
			return err
		}
		if entry.Decision.Timing().Frequency == domain.Single {
			tx.state = tx.state.WithPending(tx.state.Pending.Remove(entry.Seq))
		}
	}
	return nil
}
