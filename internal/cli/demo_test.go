package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aretw0/gambit/internal/cli"
	"github.com/aretw0/gambit/internal/config"
	"github.com/aretw0/gambit/pkg/actions"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoStack(t *testing.T) *cli.Stack {
	t.Helper()
	ctx := context.Background()
	st, err := cli.Build(ctx, configFor(t, config.BackendMemory), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, err = st.SeedIfEmpty(ctx)
	require.NoError(t, err)
	return st
}

func TestRunDemo_Auto(t *testing.T) {
	st := demoStack(t)
	var out bytes.Buffer

	err := cli.RunDemo(context.Background(), st, cli.DemoOptions{Out: &out})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "> attack knight -> goblin")
	assert.Contains(t, text, "Roll to hit (1d6, need 4+) ->")
	assert.Contains(t, text, "> move archer to w2")
	assert.Contains(t, text, "> end_turn knight")
	assert.Equal(t, actions.PhaseUpkeep, st.Kernel.State().PhaseID)

	archer, _ := st.Kernel.State().Entity("archer")
	assert.Equal(t, domain.TileID("w2"), archer.Tile)
}

func TestRunDemo_JSON(t *testing.T) {
	st := demoStack(t)
	var out bytes.Buffer
	in := strings.NewReader(`{"data":{"roll":6}}` + "\n")

	err := cli.RunDemo(context.Background(), st, cli.DemoOptions{
		Mode:   cli.ModeJSON,
		In:     in,
		Out:    &out,
		Script: []domain.Command{{Type: actions.Attack, ActorID: "knight", TargetID: "goblin", ConsumesResource: true}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"type":"DiceRoll"`)
	assert.Contains(t, lines[1], `"status":"ok"`)
	assert.Contains(t, lines[1], `"outcome":"hit"`)

	health, _ := st.Kernel.Query().Field("goblin", domain.ComponentHealth, domain.FieldCurrent)
	assert.Equal(t, 4, health)
}

func TestRunDemo_Process(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	st := demoStack(t)
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - type: DiceRoll
    command: sh
    args: ["-c", "echo 6"]
`), 0o644))

	var out bytes.Buffer
	err := cli.RunDemo(context.Background(), st, cli.DemoOptions{
		Mode:          cli.ModeProcess,
		Out:           &out,
		Quiet:         true,
		ProvidersPath: path,
		Script:        []domain.Command{{Type: actions.Attack, ActorID: "knight", TargetID: "goblin", ConsumesResource: true}},
	})
	require.NoError(t, err)

	health, _ := st.Kernel.Query().Field("goblin", domain.ComponentHealth, domain.FieldCurrent)
	assert.Equal(t, 4, health)
}

func TestRunDemo_UnknownMode(t *testing.T) {
	st := demoStack(t)
	err := cli.RunDemo(context.Background(), st, cli.DemoOptions{Mode: "telepathy", Out: &bytes.Buffer{}})
	assert.Error(t, err)
}
