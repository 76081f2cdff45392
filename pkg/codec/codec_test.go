package codec_test

import (
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shieldUp struct {
	domain.DecisionBase
	EntityID domain.EntityID `json:"entity_id"`
	Amount   int             `json:"amount"`
}

func (shieldUp) Kind() domain.DecisionKind { return "shield_up" }

func TestCodec_DecisionEnvelope(t *testing.T) {
	c := codec.Default()

	in := domain.AdjustStat{
		DecisionBase: domain.Later("cmd-7", domain.At("upkeep", domain.OnStateStart, domain.Permanent)),
		EntityID:     "hero",
		Component:    domain.ComponentHealth,
		Field:        domain.FieldCurrent,
		Delta:        2,
	}

	data, err := c.EncodeDecision(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"adjust_stat"`)

	out, err := c.DecodeDecision(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, "cmd-7", out.Origin())
}

func TestCodec_UnknownKind(t *testing.T) {
	c := codec.Default()
	_, err := c.DecodeDecision([]byte(`{"kind":"summon_dragon","payload":{}}`))
	assert.ErrorIs(t, err, codec.ErrUnknownKind)
}

func TestCodec_CustomDecision(t *testing.T) {
	c := codec.Default()
	assert.False(t, c.Knows("shield_up"))

	require.NoError(t, codec.Register[shieldUp](c))
	assert.True(t, c.Knows("shield_up"))

	err := codec.Register[shieldUp](c)
	assert.ErrorIs(t, err, codec.ErrDuplicateKind)

	in := shieldUp{DecisionBase: domain.Now("cmd-1"), EntityID: "hero", Amount: 3}
	data, err := c.EncodeDecision(in)
	require.NoError(t, err)
	out, err := c.DecodeDecision(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCodec_MustRegisterPanicsOnDuplicate(t *testing.T) {
	c := codec.Default()
	assert.Panics(t, func() { codec.MustRegister[domain.SetPhase](c) })
}

func TestCodec_StateRoundTrip(t *testing.T) {
	c := codec.Default()

	board := domain.NewBoard("arena", "a1", "a2", "a3").Connect("a1", "a2").Connect("a2", "a3")
	state := domain.NewState("main").
		WithBoard(board).
		WithEntity(domain.Entity{ID: "hero", Kind: "unit", Tile: "a1", Components: map[string]domain.Component{
			domain.ComponentHealth:       {domain.FieldCurrent: 4, domain.FieldMax: 5},
			domain.ComponentActionPoints: {domain.FieldCurrent: 2, domain.FieldMax: 2},
		}}).
		WithMetadata("turn", "3")
	state = state.WithPending(state.Pending.
		Add(domain.SetPhase{DecisionBase: domain.Later("cmd-1", domain.At("main", domain.OnStateEnd, domain.Single)), Phase: "upkeep"}).
		Add(domain.AdjustStat{DecisionBase: domain.Later("cmd-2", domain.At("upkeep", domain.OnStateStart, domain.Permanent)), EntityID: "hero", Component: domain.ComponentHealth, Field: domain.FieldCurrent, Delta: 1}).
		Remove(0))
	state.Version = 12

	data, err := c.EncodeState(state)
	require.NoError(t, err)

	loaded, err := c.DecodeState(data)
	require.NoError(t, err)

	assert.Equal(t, state.Version, loaded.Version)
	assert.Equal(t, state.PhaseID, loaded.PhaseID)
	assert.Equal(t, state.Metadata, loaded.Metadata)
	assert.Equal(t, state.Board, loaded.Board)
	assert.Equal(t, state.Entities.All(), loaded.Entities.All())
	assert.Equal(t, state.Pending.Entries(), loaded.Pending.Entries())
	assert.Equal(t, state.Pending.NextSeq(), loaded.Pending.NextSeq(), "sequence numbers must not be reused after reload")

	again, err := c.EncodeState(loaded)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(again))
}

func TestCodec_StateWithUnknownPendingKind(t *testing.T) {
	c := codec.New()
	_, err := c.DecodeState([]byte(`{"version":1,"phase_id":"main","pending":[{"seq":0,"decision":{"kind":"set_phase","payload":{}}}]}`))
	assert.ErrorIs(t, err, codec.ErrUnknownKind)
}

func TestCodec_Session(t *testing.T) {
	cmd := domain.Command{ID: "c1", Type: "attack", ActorID: "hero", TargetID: "goblin"}
	s := domain.NewSessionContext("s-1", cmd, domain.NewState("main"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.CurrentNodeID = "resolve_hit"
	s.Set("threshold", 4)
	s.Trail = []string{"validate_range", "request_to_hit"}

	data, err := codec.EncodeSession(s)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "snapshot")

	out, err := codec.DecodeSession(data)
	require.NoError(t, err)
	assert.Nil(t, out.Snapshot)
	assert.Equal(t, s.Command, out.Command)
	assert.Equal(t, s.Trail, out.Trail)
	assert.True(t, s.CreatedAt.Equal(out.CreatedAt))
	n, ok := out.Int("threshold")
	assert.True(t, ok)
	assert.Equal(t, 4, n)
}
