package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Roller rolls dice notation against a seeded random source.
// It is safe for concurrent use.
type Roller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller creates a deterministic roller.
func NewRoller(seed int64) *Roller {
	return &Roller{rng: rand.New(rand.NewSource(seed))}
}

// NewRandomRoller creates a roller seeded from crypto/rand.
func NewRandomRoller() (*Roller, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewRoller(seed), nil
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Roll parses and rolls the notation.
func (r *Roller) Roll(notation string) (Result, error) {
	spec, err := Parse(notation)
	if err != nil {
		return Result{}, err
	}
	return r.RollSpec(spec)
}

// RollSpec rolls an already parsed spec.
func (r *Roller) RollSpec(spec Spec) (Result, error) {
	if err := spec.Validate(); err != nil {
		return Result{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rolls := make([]int, spec.Count)
	total := spec.Modifier
	for i := range rolls {
		rolls[i] = rollDie(r.rng, spec.Sides)
		total += rolls[i]
	}
	return Result{
		Notation: spec.String(),
		Rolls:    rolls,
		Modifier: spec.Modifier,
		Total:    total,
	}, nil
}

// rollDie rolls a single die with the provided number of sides.
func rollDie(rng *rand.Rand, sides int) int {
	return rng.Intn(sides) + 1
}
