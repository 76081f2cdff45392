package pipeline_test

import (
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string) *domain.SessionContext {
	cmd := domain.Command{ID: "c1", Type: "scout", ActorID: "hero"}
	return domain.NewSessionContext(id, cmd, domain.NewState("main"), time.Now())
}

func heal(amount int) domain.Decision {
	return domain.AdjustStat{DecisionBase: domain.Now("c1"), EntityID: "hero", Component: domain.ComponentHealth, Field: domain.FieldCurrent, Delta: amount}
}

func TestExecute_SuspendAndResume(t *testing.T) {
	runs := map[string]int{}
	p := pipeline.New("scout").
		Step("prepare", func(sc *domain.SessionContext) pipeline.StepOutcome {
			runs["prepare"]++
			sc.Set("threshold", 4)
			return pipeline.Continue("ask")
		}).
		Step("ask", func(sc *domain.SessionContext) pipeline.StepOutcome {
			runs["ask"]++
			return pipeline.SuspendFor(domain.InteractionRequest{Type: domain.InteractionDiceRoll, Prompt: "roll"}, "resolve")
		}).
		Step("resolve", func(sc *domain.SessionContext) pipeline.StepOutcome {
			runs["resolve"]++
			roll, _ := sc.Int("roll")
			threshold, _ := sc.Int("threshold")
			if roll >= threshold {
				return pipeline.CommitWith(heal(roll))
			}
			return pipeline.End()
		}).
		MustBuild()

	sc := newSession("s-1")
	res := p.Execute(sc)
	require.Equal(t, pipeline.Suspended, res.Status)
	require.NotNil(t, res.Request)
	assert.Equal(t, "s-1", res.Request.SessionID, "driver stamps the session id")
	assert.Equal(t, "resolve", sc.CurrentNodeID)
	assert.Equal(t, []string{"prepare", "ask"}, sc.Trail)

	sc.Set("roll", 5.0)
	res = p.Execute(sc)
	require.Equal(t, pipeline.Completed, res.Status)
	require.Len(t, res.Decisions, 1)

	assert.Equal(t, 1, runs["prepare"], "steps before the suspension never re-run")
	assert.Equal(t, 1, runs["ask"])
	assert.Equal(t, 1, runs["resolve"])
	assert.Equal(t, []string{"prepare", "ask", "resolve"}, sc.Trail)
}

func TestExecute_EndAndAbort(t *testing.T) {
	p := pipeline.New("gate").
		Step("check", func(sc *domain.SessionContext) pipeline.StepOutcome {
			if sc.Command.TargetID == "" {
				return pipeline.Abort("target required")
			}
			return pipeline.End()
		}).
		MustBuild()

	res := p.Execute(newSession("a"))
	assert.Equal(t, pipeline.Failed, res.Status)
	assert.Equal(t, "target required", res.Reason)

	sc := newSession("b")
	sc.Command.TargetID = "goblin"
	res = p.Execute(sc)
	assert.Equal(t, pipeline.Completed, res.Status)
	assert.Empty(t, res.Decisions)
}

func TestExecute_WiringFaults(t *testing.T) {
	tests := []struct {
		name   string
		build  func() *pipeline.Pipeline
		reason string
	}{
		{
			name: "unknown continue target",
			build: func() *pipeline.Pipeline {
				return pipeline.New("p").Step("a", func(*domain.SessionContext) pipeline.StepOutcome {
					return pipeline.Continue("missing")
				}).MustBuild()
			},
			reason: "unknown step",
		},
		{
			name: "continue loop",
			build: func() *pipeline.Pipeline {
				return pipeline.New("p").MaxSteps(8).Step("a", func(*domain.SessionContext) pipeline.StepOutcome {
					return pipeline.Continue("a")
				}).MustBuild()
			},
			reason: "step limit 8 exceeded",
		},
		{
			name: "unknown resume step",
			build: func() *pipeline.Pipeline {
				return pipeline.New("p").Step("a", func(*domain.SessionContext) pipeline.StepOutcome {
					return pipeline.SuspendFor(domain.InteractionRequest{Type: domain.InteractionConfirm}, "nowhere")
				}).MustBuild()
			},
			reason: "resume step",
		},
		{
			name: "zero outcome",
			build: func() *pipeline.Pipeline {
				return pipeline.New("p").Step("a", func(*domain.SessionContext) pipeline.StepOutcome {
					return pipeline.StepOutcome{}
				}).MustBuild()
			},
			reason: "zero outcome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.build()
			defer func() {
				r := recover()
				require.NotNil(t, r)
				werr, ok := r.(*pipeline.WiringError)
				require.True(t, ok, "got %T", r)
				assert.Contains(t, werr.Error(), tt.reason)
			}()
			p.Execute(newSession("s"))
		})
	}
}

func TestBuilder_Validation(t *testing.T) {
	noop := func(*domain.SessionContext) pipeline.StepOutcome { return pipeline.End() }

	_, err := pipeline.New("empty").Build()
	assert.ErrorContains(t, err, "no steps")

	_, err = pipeline.New("dup").Step("a", noop).Step("a", noop).Build()
	assert.ErrorContains(t, err, `duplicate step "a"`)

	_, err = pipeline.New("start").Step("a", noop).Start("b").Build()
	assert.ErrorContains(t, err, `start step "b" does not exist`)

	_, err = pipeline.New("nil").Step("a", nil).Build()
	assert.ErrorContains(t, err, "has no body")

	p, err := pipeline.New("ok").Step("a", noop).Step("b", noop).Start("b").Build()
	require.NoError(t, err)
	assert.Equal(t, "b", p.Start())
	assert.Equal(t, []string{"a", "b"}, p.Steps())
	assert.True(t, p.Has("a"))

	assert.Panics(t, func() { pipeline.New("x").MustBuild() })
}

func TestDecodeVariables(t *testing.T) {
	sc := newSession("s")
	sc.Set("roll", 5.0)
	sc.Set("threshold", "4")
	sc.Set("note", "lucky")

	var in struct {
		Roll      int    `mapstructure:"roll"`
		Threshold int    `mapstructure:"threshold"`
		Note      string `mapstructure:"note"`
	}
	require.NoError(t, pipeline.DecodeVariables(sc, &in))
	assert.Equal(t, 5, in.Roll)
	assert.Equal(t, 4, in.Threshold)
	assert.Equal(t, "lucky", in.Note)
}

func TestDecodePayload(t *testing.T) {
	cmd := domain.Command{Payload: map[string]any{"to": "a2", "steps": 2.0}}
	var args struct {
		To    string `mapstructure:"to"`
		Steps int    `mapstructure:"steps"`
	}
	require.NoError(t, pipeline.DecodePayload(cmd, &args))
	assert.Equal(t, "a2", args.To)
	assert.Equal(t, 2, args.Steps)
}
