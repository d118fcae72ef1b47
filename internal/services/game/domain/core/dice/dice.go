// Package dice implements seeded dice rolling for battle resolution.
package dice

import (
	"errors"
	"math/rand"
)

// D20 is the die rolled for attacks.
const D20 = 20

// ErrInvalidSides indicates a die with fewer than one side.
var ErrInvalidSides = errors.New("dice must have positive sides")

// Roller produces die results in [1, sides].
type Roller interface {
	Roll(sides int) (int, error)
}

// Seeded rolls dice from a math/rand source.
//
// Given the same seed, a Seeded roller produces the same sequence of results,
// which is what lets a battle be replayed from its recorded seed.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded returns a roller seeded with seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a result in [1, sides].
func (s *Seeded) Roll(sides int) (int, error) {
	if sides <= 0 {
		return 0, ErrInvalidSides
	}
	return s.rng.Intn(sides) + 1, nil
}

// Sequence replays fixed results in order, wrapping when exhausted.
// Results are clamped into [1, sides].
type Sequence struct {
	values []int
	next   int
}

// NewSequence returns a roller that yields values in order.
func NewSequence(values ...int) *Sequence {
	return &Sequence{values: append([]int(nil), values...)}
}

// Roll returns the next scripted result.
func (s *Sequence) Roll(sides int) (int, error) {
	if sides <= 0 {
		return 0, ErrInvalidSides
	}
	if len(s.values) == 0 {
		return 1, nil
	}
	value := s.values[s.next%len(s.values)]
	s.next++
	return min(max(value, 1), sides), nil
}
