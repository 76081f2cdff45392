// Package dice parses dice notation ("2d6+1") and rolls it with a seeded source.
//
// A Roller is deterministic with respect to its seed: the same seed and the same
// sequence of notations always produce the same results, which is what the
// reference scenarios and replays rely on.
package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingDice indicates a notation with no dice.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// ErrInvalidNotation indicates the notation string could not be parsed.
var ErrInvalidNotation = errors.New("invalid dice notation")

// MaxCount bounds the number of dice in a single notation.
const MaxCount = 100

// Spec describes a die to roll and how many times to roll it, plus a flat modifier.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

// String renders the spec back to notation.
func (s Spec) String() string {
	out := fmt.Sprintf("%dd%d", s.Count, s.Sides)
	switch {
	case s.Modifier > 0:
		out += "+" + strconv.Itoa(s.Modifier)
	case s.Modifier < 0:
		out += strconv.Itoa(s.Modifier)
	}
	return out
}

// Validate checks sides and count.
func (s Spec) Validate() error {
	if s.Sides <= 0 || s.Count <= 0 {
		return ErrInvalidDiceSpec
	}
	if s.Count > MaxCount {
		return fmt.Errorf("%w: at most %d dice", ErrInvalidDiceSpec, MaxCount)
	}
	return nil
}

// Result captures the individual rolls and the total including the modifier.
type Result struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Modifier int    `json:"modifier,omitempty"`
	Total    int    `json:"total"`
}

// Parse reads notation of the form "NdS", "dS", "NdS+M" or "NdS-M".
func Parse(notation string) (Spec, error) {
	raw := strings.ToLower(strings.TrimSpace(notation))
	if raw == "" {
		return Spec{}, ErrMissingDice
	}

	dIdx := strings.IndexByte(raw, 'd')
	if dIdx < 0 {
		return Spec{}, fmt.Errorf("%w: %q has no 'd'", ErrInvalidNotation, notation)
	}

	spec := Spec{Count: 1}
	if dIdx > 0 {
		n, err := strconv.Atoi(raw[:dIdx])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: bad count in %q", ErrInvalidNotation, notation)
		}
		spec.Count = n
	}

	rest := raw[dIdx+1:]
	sidesPart := rest
	if i := strings.IndexAny(rest, "+-"); i >= 0 {
		sidesPart = rest[:i]
		mod, err := strconv.Atoi(rest[i:])
		if err != nil {
			return Spec{}, fmt.Errorf("%w: bad modifier in %q", ErrInvalidNotation, notation)
		}
		spec.Modifier = mod
	}

	sides, err := strconv.Atoi(sidesPart)
	if err != nil {
		return Spec{}, fmt.Errorf("%w: bad sides in %q", ErrInvalidNotation, notation)
	}
	spec.Sides = sides

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}
