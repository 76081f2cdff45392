package actions

import "github.com/aretw0/gambit/pkg/domain"

// Skirmish returns the setup decisions of a small three-unit scenario on a
// five-tile line: knight and archer against a goblin.
//
//	w1 - w2 - w3 - w4 - w5
func Skirmish() []domain.Decision {
	board := domain.NewBoard("skirmish", "w1", "w2", "w3", "w4", "w5").
		Connect("w1", "w2").
		Connect("w2", "w3").
		Connect("w3", "w4").
		Connect("w4", "w5")

	unit := func(id domain.EntityID, tile domain.TileID, health, ap, attack int) domain.Decision {
		components := map[string]domain.Component{
			domain.ComponentHealth: {domain.FieldCurrent: health, domain.FieldMax: health},
		}
		if ap > 0 {
			components[domain.ComponentActionPoints] = domain.Component{domain.FieldCurrent: ap, domain.FieldMax: ap}
		}
		if attack > 0 {
			components[domain.ComponentAttack] = domain.Component{domain.FieldValue: attack}
		}
		return domain.SpawnEntity{
			DecisionBase: domain.Now("setup"),
			Entity:       domain.Entity{ID: id, Kind: "unit", Tile: tile, Components: components},
		}
	}

	return []domain.Decision{
		domain.InitializeBoard{DecisionBase: domain.Now("setup"), Board: board},
		unit("knight", "w2", 10, 2, 3),
		unit("archer", "w1", 6, 2, 2),
		unit("goblin", "w3", 7, 0, 0),
	}
}
