package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/gambit/pkg/domain"
)

// Overlay highlights tiles of interest on top of the board.
type Overlay struct {
	// Actor is the tile of the acting entity.
	Actor domain.TileID
	// Targets are tiles affected by the current command.
	Targets []domain.TileID
}

// BoardMermaid renders the board of s as a Mermaid flowchart. Each tile is a
// node labelled with its occupants; occupied tiles use a rounded shape.
// Every edge is written once.
func BoardMermaid(s domain.State, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	tiles := make([]domain.TileID, 0, len(s.Board.Tiles))
	for t := range s.Board.Tiles {
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })

	for _, t := range tiles {
		id := sanitizeMermaidID(string(t))
		occupants := s.Entities.OnTile(t)
		if len(occupants) == 0 {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, t)
			continue
		}
		names := make([]string, 0, len(occupants))
		for _, e := range occupants {
			names = append(names, entityLabel(e))
		}
		fmt.Fprintf(&sb, "    %s(\"%s <br/> %s\")\n", id, t, strings.Join(names, ", "))
	}

	for _, a := range tiles {
		for _, b := range s.Board.Tiles[a] {
			if a < b {
				fmt.Fprintf(&sb, "    %s --- %s\n", sanitizeMermaidID(string(a)), sanitizeMermaidID(string(b)))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef actor fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, t := range overlay.Targets {
			id := sanitizeMermaidID(string(t))
			if id != "" && !seen[id] && t != overlay.Actor {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s target;\n", id)
			}
		}
		if overlay.Actor != "" {
			fmt.Fprintf(&sb, "    class %s actor;\n", sanitizeMermaidID(string(overlay.Actor)))
		}
	}

	return sb.String()
}

func entityLabel(e domain.Entity) string {
	hp, ok := e.Field(domain.ComponentHealth, domain.FieldCurrent)
	if !ok {
		return string(e.ID)
	}
	return fmt.Sprintf("%s %d hp", e.ID, hp)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
