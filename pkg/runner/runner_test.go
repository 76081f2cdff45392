package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/adapters/memory"
	"github.com/aretw0/gambit/pkg/appliers"
	"github.com/aretw0/gambit/pkg/dice"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/handler"
	"github.com/aretw0/gambit/pkg/orchestrator"
	"github.com/aretw0/gambit/pkg/runner"
	"github.com/aretw0/gambit/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKernel(t *testing.T) (*handler.Handler, *session.Registry) {
	t.Helper()
	initial := domain.NewState(actions.PhaseMain).
		WithBoard(domain.NewBoard("yard", "a", "b").Connect("a", "b")).
		WithEntity(domain.Entity{ID: "knight", Tile: "a", Components: map[string]domain.Component{
			domain.ComponentActionPoints: {domain.FieldCurrent: 3, domain.FieldMax: 3},
		}}).
		WithEntity(domain.Entity{ID: "goblin", Tile: "b", Components: map[string]domain.Component{
			domain.ComponentHealth: {domain.FieldCurrent: 3, domain.FieldMax: 3},
		}})
	orch := orchestrator.New(orchestrator.MustNewRegistry(appliers.Defaults()...), initial)
	sessions := session.NewRegistry(memory.NewStore())
	return handler.New(orch, actions.MustCatalog(actions.DefaultRules()), sessions), sessions
}

var attack = domain.Command{Type: actions.Attack, ActorID: "knight", TargetID: "goblin"}

func goblinHP(t *testing.T, h *handler.Handler) int {
	t.Helper()
	e, ok := h.State().Entity("goblin")
	require.True(t, ok)
	v, _ := e.Field(domain.ComponentHealth, domain.FieldCurrent)
	return v
}

func TestRunner_ScriptedHitAndMiss(t *testing.T) {
	h, _ := newKernel(t)
	script := runner.NewScriptedProvider(6, 1)
	var seen []domain.ResultStatus
	r := runner.NewRunner(
		runner.WithProvider(script),
		runner.WithResultHook(func(_ domain.Command, res domain.CommandResult) { seen = append(seen, res.Status) }),
	)

	results, err := r.RunAll(context.Background(), h, attack, attack)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Len(t, results[0].Decisions, 2)
	assert.Empty(t, results[1].Decisions)
	assert.Equal(t, 2, goblinHP(t, h))

	assert.Equal(t, []domain.ResultStatus{
		domain.StatusSuspended, domain.StatusOK,
		domain.StatusSuspended, domain.StatusOK,
	}, seen)

	reqs := script.Requests()
	require.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0].SessionID, reqs[1].SessionID)
}

func TestRunner_DiceProvider(t *testing.T) {
	h, _ := newKernel(t)
	r := runner.NewRunner(runner.WithProvider(runner.NewDiceProvider(dice.NewRoller(42))))

	res, err := r.Run(context.Background(), h, attack)
	require.NoError(t, err)
	assert.True(t, res.IsOK())
	assert.Contains(t, []any{"hit", "miss"}, res.Variables[domain.VarOutcome])
}

func TestRunner_ProviderErrorCancelsSession(t *testing.T) {
	h, sessions := newKernel(t)
	boom := errors.New("table flipped")
	r := runner.NewRunner(runner.WithProvider(runner.ProviderFunc(
		func(context.Context, domain.InteractionRequest) (domain.InteractionResponse, error) {
			return domain.InteractionResponse{}, boom
		})))

	_, err := r.Run(context.Background(), h, attack)
	assert.ErrorIs(t, err, boom)

	ids, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRunner_ContextCancelled(t *testing.T) {
	h, sessions := newKernel(t)
	ctx, cancel := context.WithCancel(context.Background())
	r := runner.NewRunner(runner.WithProvider(runner.ProviderFunc(
		func(ctx context.Context, req domain.InteractionRequest) (domain.InteractionResponse, error) {
			cancel()
			return domain.InteractionResponse{}, ctx.Err()
		})))

	_, err := r.Run(ctx, h, attack)
	assert.ErrorIs(t, err, context.Canceled)

	ids, err := sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRunner_MaxRounds(t *testing.T) {
	h, _ := newKernel(t)
	r := runner.NewRunner(runner.WithProvider(runner.NewScriptedProvider(6)), runner.WithMaxRounds(1))

	_, err := r.Run(context.Background(), h, attack)
	require.NoError(t, err, "one suspension fits in one round")

	r = runner.NewRunner(runner.WithProvider(runner.NewScriptedProvider()))
	_, err = r.Run(context.Background(), h, attack)
	assert.ErrorIs(t, err, runner.ErrScriptExhausted)
}

func TestRunner_DefaultProviderCancels(t *testing.T) {
	h, _ := newKernel(t)
	res, err := runner.NewRunner().Run(context.Background(), h, attack)
	require.NoError(t, err)
	assert.True(t, res.HasTag(domain.TagCancelled))
	assert.Equal(t, 3, goblinHP(t, h))
}

func TestRunner_TextProvider(t *testing.T) {
	h, _ := newKernel(t)
	in := strings.NewReader("banana\n5\n")
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithProvider(runner.NewTextProvider(in, out, nil)))

	res, err := r.Run(context.Background(), h, attack)
	require.NoError(t, err)
	assert.Len(t, res.Decisions, 2)
	assert.Contains(t, out.String(), "Roll to hit (1d6, need 4+)")
	assert.Contains(t, out.String(), `could not understand "banana"`)
}

func TestRunner_JSONProvider(t *testing.T) {
	h, _ := newKernel(t)
	in := strings.NewReader(`{"data":{"roll":4}}` + "\n")
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithProvider(runner.NewJSONProvider(in, out)))

	res, err := r.Run(context.Background(), h, attack)
	require.NoError(t, err)
	assert.Len(t, res.Decisions, 2)
	assert.Contains(t, out.String(), `"type":"DiceRoll"`)
}

func TestEchoMiddleware(t *testing.T) {
	h, _ := newKernel(t)
	out := &bytes.Buffer{}
	r := runner.NewRunner(runner.WithProvider(runner.NewScriptedProvider(nil), runner.EchoMiddleware(out)))

	_, err := r.Run(context.Background(), h, attack)
	require.NoError(t, err)
	assert.Equal(t, "Roll to hit (1d6, need 4+) -> cancelled\n", out.String())
}
