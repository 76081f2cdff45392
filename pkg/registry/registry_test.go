package registry_test

import (
	"testing"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
	"github.com/aretw0/gambit/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(name string) *pipeline.Pipeline {
	return pipeline.New(name).Step("only", func(*domain.SessionContext) pipeline.StepOutcome {
		return pipeline.End()
	}).MustBuild()
}

func TestCatalog(t *testing.T) {
	c, err := registry.NewCatalog(
		registry.Entry{Type: "wait", Pipeline: noop("wait")},
		registry.Entry{Type: "attack", Pipeline: noop("attack")},
	)
	require.NoError(t, err)

	p, ok := c.Lookup("attack")
	require.True(t, ok)
	assert.Equal(t, "attack", p.Name())

	_, ok = c.Lookup("fly")
	assert.False(t, ok)

	assert.Equal(t, []domain.CommandType{"attack", "wait"}, c.Types())
}

func TestCatalog_Duplicate(t *testing.T) {
	_, err := registry.NewCatalog(
		registry.Entry{Type: "attack", Pipeline: noop("a")},
		registry.Entry{Type: "attack", Pipeline: noop("b")},
	)
	assert.ErrorIs(t, err, registry.ErrDuplicateCommand)
}

func TestCatalog_InvalidEntries(t *testing.T) {
	c, err := registry.NewCatalog()
	require.NoError(t, err)
	assert.Error(t, c.Register("", noop("x")))
	assert.Error(t, c.Register("x", nil))
}
