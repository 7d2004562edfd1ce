package engine

import (
	"fmt"
	"math/rand"
)

// Source supplies the dice engine's randomness. *rand.Rand satisfies
// it; tests inject scripted sources to fix the roll sequence.
type Source interface {
	Intn(n int) int
}

// Dice evaluates roll specifiers against a single source of
// randomness. One Dice instance backs one interpreter run; concurrent
// runs must each own their own.
type Dice struct {
	src Source
}

// NewDice builds a dice engine on the given source.
func NewDice(src Source) *Dice {
	return &Dice{src: src}
}

// NewSeededDice builds a dice engine on a rand.Rand seeded with seed.
// Rolls are deterministic with respect to the seed.
func NewSeededDice(seed int64) *Dice {
	return NewDice(rand.New(rand.NewSource(seed)))
}

// RollSpecifier is "roll Count dice of Sides sides, then add Modifier".
type RollSpecifier struct {
	Count    int
	Sides    int
	Modifier int
}

// Validate rejects specifiers outside the language's domain: at least
// one die, at least two sides. Checked at load time, not at roll time.
func (s RollSpecifier) Validate() error {
	if s.Count < 1 || s.Sides < 2 {
		return &DefinitionError{Message: fmt.Sprintf("invalid dice specifier %s: need at least 1 die with 2 sides", s)}
	}
	return nil
}

func (s RollSpecifier) String() string {
	switch {
	case s.Modifier > 0:
		return fmt.Sprintf("%dd%d + %d", s.Count, s.Sides, s.Modifier)
	case s.Modifier < 0:
		return fmt.Sprintf("%dd%d - %d", s.Count, s.Sides, -s.Modifier)
	default:
		return fmt.Sprintf("%dd%d", s.Count, s.Sides)
	}
}

// Roll draws Count samples uniformly from [1, Sides], sums them and
// adds the modifier.
func (d *Dice) Roll(spec RollSpecifier) int {
	total := spec.Modifier
	for i := 0; i < spec.Count; i++ {
		total += d.src.Intn(spec.Sides) + 1
	}
	return total
}
