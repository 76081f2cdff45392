package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/orchestrator"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/aretw0/gambit/pkg/query"
	"github.com/aretw0/gambit/pkg/registry"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/gambit/pkg/handler"

// Handler implements ports.CommandProcessor.
type Handler struct {
	orch     *orchestrator.Orchestrator
	catalog  *registry.Catalog
	sessions *session.Registry

	repo  ports.StateRepository
	sink  ports.EffectSink
	hooks domain.LifecycleHooks

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

var _ ports.CommandProcessor = (*Handler)(nil)

// Option configures the Handler.
type Option func(*Handler)

// WithRepository loads the State before each command and saves it after each commit.
func WithRepository(repo ports.StateRepository) Option {
	return func(h *Handler) {
		h.repo = repo
	}
}

// WithEffectSink publishes the effects of committed decisions.
func WithEffectSink(sink ports.EffectSink) Option {
	return func(h *Handler) {
		h.sink = sink
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Handler) {
		h.hooks = hooks
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(h *Handler) {
		h.tracer = tracer
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// WithIDGenerator overrides the session and command id generator.
func WithIDGenerator(fn func() string) Option {
	return func(h *Handler) {
		h.newID = fn
	}
}

// New creates a Handler.
func New(orch *orchestrator.Orchestrator, catalog *registry.Catalog, sessions *session.Registry, opts ...Option) *Handler {
	h := &Handler{
		orch:     orch,
		catalog:  catalog,
		sessions: sessions,
		logger:   logging.NewNop(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    newID,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// State returns the authoritative State.
func (h *Handler) State() domain.State {
	return h.orch.State()
}

// Handle resolves a new Command.
func (h *Handler) Handle(ctx context.Context, cmd domain.Command) (result domain.CommandResult, err error) {
	start := h.now()
	ctx, span := h.tracer.Start(ctx, "gambit.Handle", trace.WithAttributes(
		attribute.String("gambit.command.type", string(cmd.Type)),
		attribute.String("gambit.command.actor", string(cmd.ActorID)),
	))
	sessionID := ""
	defer func() {
		h.finish(ctx, span, cmd.Type, sessionID, result, err, start)
	}()

	if err := cmd.Validate(); err != nil {
		return domain.Fail(err.Error()), nil
	}
	if cmd.ID == "" {
		cmd.ID = h.newID()
	}

	state, err := h.syncState(ctx)
	if err != nil {
		return domain.CommandResult{}, err
	}

	if reason, ok := h.preconditions(cmd, state); !ok {
		h.logger.Debug("command rejected", "type", cmd.Type, "actor", cmd.ActorID, "reason", reason)
		return domain.Fail(reason), nil
	}

	p, ok := h.catalog.Lookup(cmd.Type)
	if !ok {
		return domain.Fail(fmt.Sprintf("unknown command type %q", cmd.Type)), nil
	}

	sc := domain.NewSessionContext(h.newID(), cmd, state, h.now())
	sessionID = sc.SessionID
	span.SetAttributes(attribute.String("gambit.session.id", sessionID))

	res := p.Execute(sc)
	return h.conclude(ctx, sc, res, false)
}

// Resume continues a suspended session.
func (h *Handler) Resume(ctx context.Context, resp domain.InteractionResponse) (result domain.CommandResult, err error) {
	start := h.now()
	ctx, span := h.tracer.Start(ctx, "gambit.Resume", trace.WithAttributes(
		attribute.String("gambit.session.id", resp.SessionID),
		attribute.Bool("gambit.response.cancelled", resp.Cancelled),
	))
	var cmdType domain.CommandType
	defer func() {
		h.finish(ctx, span, cmdType, resp.SessionID, result, err, start)
	}()

	if resp.SessionID == "" {
		return domain.CommandResult{}, fmt.Errorf("resume: %w: empty session id", domain.ErrSessionNotFound)
	}

	err = h.sessions.WithLock(ctx, resp.SessionID, func(ctx context.Context) error {
		sc, err := h.sessions.Get(ctx, resp.SessionID)
		if err != nil {
			return err
		}
		cmdType = sc.Command.Type

		if resp.Cancelled {
			if err := h.sessions.Evict(ctx, sc.SessionID, session.ReasonCancelled); err != nil {
				return fmt.Errorf("evict cancelled session: %w", err)
			}
			result = domain.Ok(nil, domain.TagCancelled)
			result.Variables = map[string]any{domain.VarCancelled: true}
			return nil
		}

		p, ok := h.catalog.Lookup(sc.Command.Type)
		if !ok {
			return fmt.Errorf("resume %s: no pipeline for command type %q", sc.SessionID, sc.Command.Type)
		}

		state, err := h.syncState(ctx)
		if err != nil {
			return err
		}
		// The State may have moved on while the session was suspended.
		if reason, ok := h.preconditions(sc.Command, state); !ok {
			if err := h.sessions.Evict(ctx, sc.SessionID, session.ReasonRejected); err != nil {
				return fmt.Errorf("evict rejected session: %w", err)
			}
			result = domain.Fail(reason)
			result.Variables = sc.Variables
			return nil
		}
		sc.Snapshot = &state
		if ignored := sc.Accept(resp.Data); len(ignored) > 0 {
			h.logger.Warn("response keys ignored", "session_id", sc.SessionID, "keys", ignored)
		}
		sc.UpdatedAt = h.now()

		if h.hooks.OnSessionResumed != nil {
			h.hooks.OnSessionResumed(ctx, &domain.SessionEvent{
				EventBase: domain.EventBase{Timestamp: h.now(), Type: domain.EventSessionResumed},
				SessionID: sc.SessionID,
				NodeID:    sc.CurrentNodeID,
			})
		}

		res := p.Execute(sc)
		result, err = h.conclude(ctx, sc, res, true)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return domain.CommandResult{}, fmt.Errorf("resume %s: %w", resp.SessionID, err)
		}
		return domain.CommandResult{}, err
	}
	return result, nil
}

// preconditions runs the checks shared by every command.
func (h *Handler) preconditions(cmd domain.Command, s domain.State) (string, bool) {
	q := query.New(s)
	if _, err := q.Entity(cmd.ActorID); err != nil {
		return fmt.Sprintf("actor %s not found", cmd.ActorID), false
	}
	if cmd.ConsumesResource && !q.HasResource(cmd.ActorID, domain.ComponentActionPoints, 1) {
		return fmt.Sprintf("actor %s has no action points left", cmd.ActorID), false
	}
	return "", true
}

// conclude turns a pipeline result into a CommandResult.
// registered is true when the session already lives in the registry.
func (h *Handler) conclude(ctx context.Context, sc *domain.SessionContext, res pipeline.Result, registered bool) (domain.CommandResult, error) {
	switch res.Status {
	case pipeline.Completed:
		effects, err := h.commit(ctx, res.Decisions)
		if errors.Is(err, domain.ErrEntityNotFound) {
			// An entity the decisions name is gone: the command is no longer valid.
			if registered {
				if err := h.sessions.Evict(ctx, sc.SessionID, session.ReasonRejected); err != nil {
					h.logger.Warn("failed to evict rejected session", "session_id", sc.SessionID, "err", err)
				}
			}
			result := domain.Fail(err.Error())
			result.Variables = sc.Variables
			return result, nil
		}
		if err != nil {
			return domain.CommandResult{}, err
		}
		if registered {
			if err := h.sessions.Remove(ctx, sc.SessionID); err != nil {
				h.logger.Warn("failed to unregister completed session", "session_id", sc.SessionID, "err", err)
			}
		}
		result := domain.Ok(res.Decisions, outcomeTags(res.Decisions)...)
		result.Effects = effects
		result.Variables = sc.Variables
		return result, nil

	case pipeline.Suspended:
		sc.Awaiting = res.Request.Variable()
		if err := h.sessions.Register(ctx, sc); err != nil {
			return domain.CommandResult{}, err
		}
		if h.hooks.OnSessionSuspended != nil {
			h.hooks.OnSessionSuspended(ctx, &domain.SessionEvent{
				EventBase: domain.EventBase{Timestamp: h.now(), Type: domain.EventSessionSuspended},
				SessionID: sc.SessionID,
				NodeID:    sc.CurrentNodeID,
			})
		}
		req := *res.Request
		req.SessionID = sc.SessionID
		return domain.Suspended(req), nil

	case pipeline.Failed:
		if registered {
			if err := h.sessions.Remove(ctx, sc.SessionID); err != nil {
				h.logger.Warn("failed to unregister failed session", "session_id", sc.SessionID, "err", err)
			}
		}
		result := domain.Fail(res.Reason)
		result.Variables = sc.Variables
		return result, nil
	}
	return domain.CommandResult{}, fmt.Errorf("pipeline returned unknown status %v", res.Status)
}

// commit applies the decisions and the triggers they reach in one
// transaction, persists the State and publishes effects.
func (h *Handler) commit(ctx context.Context, decisions []domain.Decision) ([]domain.Effect, error) {
	effects, err := h.orch.CommitCommand(ctx, decisions)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if h.repo != nil {
		if err := h.repo.SaveState(ctx, h.orch.State()); err != nil {
			return nil, fmt.Errorf("save state: %w", err)
		}
	}
	if h.sink != nil {
		for _, e := range effects {
			h.sink.Emit(e)
		}
	}
	return effects, nil
}

// syncState adopts a newer State from the repository, if any, and returns the
// authoritative snapshot.
func (h *Handler) syncState(ctx context.Context) (domain.State, error) {
	current := h.orch.State()
	if h.repo == nil {
		return current, nil
	}
	loaded, err := h.repo.LoadState(ctx)
	if errors.Is(err, domain.ErrStateNotFound) {
		return current, nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("load state: %w", err)
	}
	if loaded.Version > current.Version {
		h.orch.Restore(loaded)
		return loaded, nil
	}
	return current, nil
}

func (h *Handler) finish(ctx context.Context, span trace.Span, cmdType domain.CommandType, sessionID string, result domain.CommandResult, err error, start time.Time) {
	defer span.End()

	status := result.Status
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.Error("command fault", "type", cmdType, "session_id", sessionID, "err", err)
		status = domain.StatusFailed
	} else {
		span.SetAttributes(attribute.String("gambit.result.status", string(status)))
	}

	if h.hooks.OnCommandHandled != nil {
		h.hooks.OnCommandHandled(ctx, &domain.CommandEvent{
			EventBase:   domain.EventBase{Timestamp: h.now(), Type: domain.EventCommandHandled},
			CommandType: cmdType,
			SessionID:   sessionID,
			Status:      status,
			Duration:    h.now().Sub(start),
		})
	}
}

func outcomeTags(decisions []domain.Decision) []string {
	if len(decisions) == 0 {
		return []string{domain.TagNoChange}
	}
	for _, d := range decisions {
		if !d.Timing().IsImmediate() {
			return []string{domain.TagScheduled}
		}
	}
	return nil
}
