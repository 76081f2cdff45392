package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/gambit/internal/presentation/graph"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func board() domain.State {
	b := domain.NewBoard("test", "a-1", "b", "c").Connect("a-1", "b").Connect("b", "c")
	return domain.NewState("main").
		WithBoard(b).
		WithEntity(domain.Entity{ID: "knight", Tile: "a-1", Components: map[string]domain.Component{
			domain.ComponentHealth: {domain.FieldCurrent: 7},
		}}).
		WithEntity(domain.Entity{ID: "flag", Tile: "c"})
}

func TestBoardMermaid(t *testing.T) {
	tests := []struct {
		name        string
		overlay     *graph.Overlay
		contains    []string
		notContains []string
	}{
		{
			name: "Tiles And Occupants",
			contains: []string{
				"graph LR",
				"a_1(\"a-1 <br/> knight 7 hp\")",
				"b[\"b\"]",
				"c(\"c <br/> flag\")",
			},
			notContains: []string{"classDef"},
		},
		{
			name: "Edges Written Once",
			contains: []string{
				"a_1 --- b",
				"b --- c",
			},
			notContains: []string{"b --- a_1", "c --- b"},
		},
		{
			name:    "Overlay",
			overlay: &graph.Overlay{Actor: "a-1", Targets: []domain.TileID{"b", "b", "a-1"}},
			contains: []string{
				"classDef actor",
				"class a_1 actor;",
				"class b target;",
			},
			notContains: []string{"class a_1 target;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := graph.BoardMermaid(board(), tt.overlay)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestBoardMermaid_TargetListedOnce(t *testing.T) {
	out := graph.BoardMermaid(board(), &graph.Overlay{Targets: []domain.TileID{"c", "c"}})
	assert.Equal(t, 1, strings.Count(out, "class c target;"))
}
