package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// ErrTooManyRounds is returned when a command keeps suspending past the limit.
var ErrTooManyRounds = errors.New("command suspended too many times")

// ResultHook observes results as the runner receives them.
type ResultHook func(cmd domain.Command, res domain.CommandResult)

// Runner drives commands through a CommandProcessor until they leave the
// suspended state.
type Runner struct {
	provider  InteractionProvider
	logger    *slog.Logger
	maxRounds int
	signals   bool
	onResult  ResultHook
}

// NewRunner creates a Runner. Without WithProvider every request is cancelled.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		provider: ProviderFunc(func(_ context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
			return Cancel(req), nil
		}),
		logger:    logging.NewNop(),
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run handles cmd and answers every suspension until the command completes or fails.
func (r *Runner) Run(ctx context.Context, proc ports.CommandProcessor, cmd domain.Command) (domain.CommandResult, error) {
	if r.signals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	res, err := proc.Handle(ctx, cmd)
	if err != nil {
		return domain.CommandResult{}, fmt.Errorf("handle %s: %w", cmd.Type, err)
	}
	r.observe(cmd, res)

	for round := 0; res.IsSuspended(); round++ {
		req := *res.Request
		if round >= r.maxRounds {
			r.abandon(proc, req)
			return res, fmt.Errorf("%w: session %s after %d rounds", ErrTooManyRounds, req.SessionID, round)
		}

		resp, err := r.provider.Provide(ctx, req)
		if err != nil {
			r.abandon(proc, req)
			if ctx.Err() != nil {
				r.logger.Debug("run cancelled", "session_id", req.SessionID, "err", ctx.Err())
				return res, ctx.Err()
			}
			return res, fmt.Errorf("provide %s: %w", req.SessionID, err)
		}
		resp.SessionID = req.SessionID

		res, err = proc.Resume(ctx, resp)
		if err != nil {
			return domain.CommandResult{}, fmt.Errorf("resume %s: %w", req.SessionID, err)
		}
		r.observe(cmd, res)
	}
	return res, nil
}

// RunAll runs commands in order and stops at the first error.
func (r *Runner) RunAll(ctx context.Context, proc ports.CommandProcessor, cmds ...domain.Command) ([]domain.CommandResult, error) {
	results := make([]domain.CommandResult, 0, len(cmds))
	for _, cmd := range cmds {
		res, err := r.Run(ctx, proc, cmd)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) observe(cmd domain.Command, res domain.CommandResult) {
	r.logger.Debug("command result", "type", cmd.Type, "status", res.Status, "tags", res.Tags)
	if r.onResult != nil {
		r.onResult(cmd, res)
	}
}

// abandon cancels a suspended session the runner will not answer.
// It uses a fresh context since ctx may already be done.
func (r *Runner) abandon(proc ports.CommandProcessor, req domain.InteractionRequest) {
	if _, err := proc.Resume(context.Background(), Cancel(req)); err != nil {
		r.logger.Warn("failed to cancel abandoned session", "session_id", req.SessionID, "err", err)
	}
}
