package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
)

// DefaultVariable is the session variable a provider answers into when the
// request names none.
const DefaultVariable = domain.DefaultVariable

// ErrScriptExhausted is returned by a ScriptedProvider with no answers left.
var ErrScriptExhausted = errors.New("scripted provider has no answers left")

// InteractionProvider answers the requests of suspended pipelines.
type InteractionProvider interface {
	Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error)
}

// ProviderFunc adapts a function to InteractionProvider.
type ProviderFunc func(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error)

func (f ProviderFunc) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	return f(ctx, req)
}

// Answer builds a response storing value under the variable the request names.
func Answer(req domain.InteractionRequest, value any) domain.InteractionResponse {
	return domain.InteractionResponse{
		SessionID: req.SessionID,
		Data:      map[string]any{variable(req): value},
	}
}

// Cancel builds a cancelled response for req.
func Cancel(req domain.InteractionRequest) domain.InteractionResponse {
	return domain.InteractionResponse{SessionID: req.SessionID, Cancelled: true}
}

func variable(req domain.InteractionRequest) string {
	return req.Variable()
}

// DiceProvider answers DiceRoll requests by rolling the requested notation.
// Confirm requests are accepted; other types are an error.
type DiceProvider struct {
	roller ports.DiceRoller
}

// NewDiceProvider creates a provider backed by roller.
func NewDiceProvider(roller ports.DiceRoller) *DiceProvider {
	return &DiceProvider{roller: roller}
}

func (p *DiceProvider) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.InteractionResponse{}, err
	}
	switch req.Type {
	case domain.InteractionDiceRoll:
		res, err := p.roller.Roll(req.Meta(domain.MetaNotation))
		if err != nil {
			return domain.InteractionResponse{}, fmt.Errorf("roll for session %s: %w", req.SessionID, err)
		}
		return Answer(req, res.Total), nil
	case domain.InteractionConfirm:
		return Answer(req, true), nil
	}
	return domain.InteractionResponse{}, fmt.Errorf("dice provider cannot answer %s requests", req.Type)
}

// ScriptedProvider answers requests from a fixed list of values, in order.
// A nil value cancels the session.
type ScriptedProvider struct {
	mu      sync.Mutex
	answers []any
	seen    []domain.InteractionRequest
}

// NewScriptedProvider creates a provider that replays answers.
func NewScriptedProvider(answers ...any) *ScriptedProvider {
	return &ScriptedProvider{answers: answers}
}

func (p *ScriptedProvider) Provide(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, req)
	if len(p.answers) == 0 {
		return domain.InteractionResponse{}, ErrScriptExhausted
	}
	next := p.answers[0]
	p.answers = p.answers[1:]
	if next == nil {
		return Cancel(req), nil
	}
	return Answer(req, next), nil
}

// Requests returns the requests answered so far.
func (p *ScriptedProvider) Requests() []domain.InteractionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.InteractionRequest(nil), p.seen...)
}
