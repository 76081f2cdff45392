package ports

import "github.com/aretw0/gambit/pkg/dice"

// DiceRoller resolves dice notation (e.g. "2d6+1").
// It is injected; the kernel never seeds it.
type DiceRoller interface {
	Roll(notation string) (dice.Result, error)
}
